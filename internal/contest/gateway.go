package contest

import (
	"context"
	"fmt"
	"time"
)

// Accent is the visual tone of an outbound message.
type Accent int

const (
	AccentInfo Accent = iota
	AccentSuccess
)

// Color is the RGB value platforms with coloured rich content use for the accent.
func (a Accent) Color() int {
	switch a {
	case AccentSuccess:
		return 0x1F8B4C
	default:
		return 0x3498DB
	}
}

// Field is a labeled block of a rich message.
type Field struct {
	Name  string
	Value string
}

// Content is a platform neutral rich message.
type Content struct {
	Title       string
	Description string
	Accent      Accent
	Fields      []Field
}

// MessageRef points at a message posted by the gateway.
type MessageRef struct {
	ChannelID ChannelID
	MessageID string
}

// Gateway is the outbound side of the chat platform. All calls may block on network I/O.
type Gateway interface {
	SendMessage(ctx context.Context, channelID ChannelID, content Content) (MessageRef, error)
	Pin(ctx context.Context, ref MessageRef) error
	Unpin(ctx context.Context, ref MessageRef) error
	Delete(ctx context.Context, ref MessageRef) error
}

const (
	announcementTitle      = "Es wurde ein Spam-Wettbewerb gestartet!"
	resultsTitle           = "Der Wettbewerb ist beendet!"
	resultsByMessagesName  = "Ergebnisse (nach Nachrichten):"
	resultsByCharacterName = "Ergebnisse (nach Zeichen):"
)

// Announcement is the message that opens a contest ending at endsAt.
func Announcement(endsAt time.Time) Content {
	return Content{
		Title:       announcementTitle,
		Description: fmt.Sprintf("Wer am meisten spamt, gewinnt.\nEnde <t:%d:R>.", endsAt.Unix()),
		Accent:      AccentInfo,
	}
}

// Results is the message that closes a contest with both rankings.
func Results(c *Counter) Content {
	return Content{
		Title:  resultsTitle,
		Accent: AccentSuccess,
		Fields: []Field{
			{Name: resultsByMessagesName, Value: c.Ranking(ByMessages)},
			{Name: resultsByCharacterName, Value: c.Ranking(ByCharacters)},
		},
	}
}
