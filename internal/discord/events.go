package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/erilali/spamcontest/internal/contest"
	"github.com/erilali/spamcontest/internal/logger"
)

const listeningStatus = "Spam"

// Events turns Discord gateway events into orchestrator calls.
type Events struct {
	ctx     context.Context
	handler MessageHandler
	log     *logger.Logger
}

// NewEvents builds the event handlers. ctx bounds message routing and is cancelled on shutdown.
func NewEvents(ctx context.Context, handler MessageHandler, log *logger.Logger) *Events {
	return &Events{ctx: ctx, handler: handler, log: log}
}

// Register attaches the handlers to s.
func (e *Events) Register(s *discordgo.Session) {
	s.AddHandler(e.Ready)
	s.AddHandler(e.Resumed)
	s.AddHandler(e.MessageCreate)
}

func (e *Events) Ready(s *discordgo.Session, r *discordgo.Ready) {
	e.log.Infof("Connected as %s", r.User.String())
	if err := s.UpdateListeningStatus(listeningStatus); err != nil {
		e.log.WithError(err).Warn("Failed to set listening status")
	}
}

func (e *Events) Resumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	e.log.Info("Resumed")
}

func (e *Events) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || isSelf(s, m.Author.ID) {
		return
	}
	e.handler.HandleMessage(e.ctx, toMessage(m.Message))
}

func isSelf(s *discordgo.Session, userID string) bool {
	return s != nil && s.State != nil && s.State.User != nil && s.State.User.ID == userID
}

func toMessage(m *discordgo.Message) contest.Message {
	return contest.Message{
		ID:        m.ID,
		ChannelID: contest.ChannelID(m.ChannelID),
		AuthorID:  contest.UserID(m.Author.ID),
		Author:    m.Author.String(),
		Content:   m.Content,
	}
}
