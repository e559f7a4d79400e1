package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cenkalti/backoff/v4"
	"github.com/erilali/spamcontest/internal/logger"
)

const (
	openRetries      = 5
	openMaxInterval  = 10 * time.Second
	openInitialDelay = 500 * time.Millisecond
)

// NewSession prepares a bot session with the intents needed to read message content.
// The websocket connection is opened by the caller once handlers are registered.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	s.Identify.Intents = Intents
	return s, nil
}

type opener interface {
	Open() error
}

// Connect opens the gateway connection, retrying with exponential backoff.
func Connect(ctx context.Context, s opener, log *logger.Logger) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = openInitialDelay
	b.MaxInterval = openMaxInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, openRetries), ctx)

	err := backoff.Retry(
		func() error {
			err := s.Open()
			if err != nil {
				log.Warnf("Discord connection failed: %v, retrying...", err)
			}
			return err
		},
		policy,
	)
	if err != nil {
		return fmt.Errorf("connecting to discord: %w", err)
	}
	return nil
}
