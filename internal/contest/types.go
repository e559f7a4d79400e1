// Package contest runs timed per-channel spam contests: it decides for every inbound chat message
// whether it belongs to a running contest or starts a new one, owns the timer of each contest and
// renders the final ranking.
package contest

import (
	"time"
	"unicode/utf8"
)

// ChannelID identifies a chat channel. At most one contest runs per channel.
type ChannelID string

// UserID identifies a message author.
type UserID string

// Message is an inbound chat message as delivered by the gateway.
type Message struct {
	ID        string
	ChannelID ChannelID
	AuthorID  UserID
	Author    string // display tag, logging only
	Content   string
}

// Characters is the number of characters (not bytes) of the message text.
func (m Message) Characters() int {
	return utf8.RuneCountInString(m.Content)
}

// Info describes a running contest.
type Info struct {
	ID        string
	ChannelID ChannelID
	Duration  time.Duration
	Pinned    bool
	StartedAt time.Time
	EndsAt    time.Time
}

// Outcome is how a session ended.
type Outcome string

const (
	OutcomeResults   Outcome = "results"   // results message posted
	OutcomeFizzled   Outcome = "fizzled"   // nobody spammed, announcement deleted
	OutcomeAbandoned Outcome = "abandoned" // process shutting down
	OutcomeFailed    Outcome = "failed"    // announcement could not be sent or the session broke
)

// Result is the final state of a closed session.
type Result struct {
	Outcome      Outcome
	Participants int
	ByMessages   []Standing
	ByCharacters []Standing
}
