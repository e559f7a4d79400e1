// internal/message/message.go
// Contains the payloads pushed to websocket observers and stored in the JetStream journal.
package message

import "time"

const Version = "1.0"

// Websocket message types.
const (
	TypeContestStarted  = "contest_started"
	TypeContestFinished = "contest_finished"
	TypeActiveContests  = "active_contests"
	TypeError           = "error"
)

type WSMessage struct {
	Version   string      `json:"version"`
	Type      string      `json:"type"`
	ContestID string      `json:"contest_id,omitempty"`
	ChannelID string      `json:"channel_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	ErrorCode string      `json:"error_code,omitempty"`
}

// ContestRecord is published when a contest starts or ends.
type ContestRecord struct {
	ContestID       string    `json:"contest_id"`
	ChannelID       string    `json:"channel_id"`
	DurationSeconds int64     `json:"duration_seconds"`
	Pinned          bool      `json:"pinned"`
	EndsAt          time.Time `json:"ends_at"`
	Status          string    `json:"status"`
	Timestamp       int64     `json:"timestamp"`
}

// CountedMessage is published for every tallied chat message.
type CountedMessage struct {
	ContestID  string `json:"contest_id"`
	ChannelID  string `json:"channel_id"`
	MessageID  string `json:"message_id"`
	AuthorID   string `json:"author_id"`
	Characters int    `json:"characters"`
	Timestamp  int64  `json:"timestamp"`
}

type Standing struct {
	Rank       int    `json:"rank"`
	AuthorID   string `json:"author_id"`
	Messages   int    `json:"messages"`
	Characters int    `json:"characters"`
}

// ResultRecord is the final tally of a contest.
type ResultRecord struct {
	ContestID    string     `json:"contest_id"`
	ChannelID    string     `json:"channel_id"`
	Outcome      string     `json:"outcome"`
	Participants int        `json:"participants"`
	ByMessages   []Standing `json:"by_messages"`
	ByCharacters []Standing `json:"by_characters"`
	Timestamp    int64      `json:"timestamp"`
}
