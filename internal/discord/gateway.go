// Package discord connects the contest orchestrator to Discord.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/erilali/spamcontest/internal/contest"
	"github.com/erilali/spamcontest/internal/logger"
)

// Intents are the gateway intents the bot needs to read channel messages.
const Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

// MessageAPI is the subset of the Discord REST API used by the gateway.
type MessageAPI interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessagePin(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessageUnpin(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// MessageHandler consumes inbound messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg contest.Message) contest.Action
}

// Gateway implements contest.Gateway on top of a Discord session.
type Gateway struct {
	api MessageAPI
	log *logger.Logger
}

func NewGateway(api MessageAPI, log *logger.Logger) *Gateway {
	return &Gateway{api: api, log: log}
}

func embed(content contest.Content) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       content.Title,
		Description: content.Description,
		Color:       content.Accent.Color(),
	}
	for _, f := range content.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: false})
	}
	return e
}

func (g *Gateway) SendMessage(ctx context.Context, channelID contest.ChannelID, content contest.Content) (contest.MessageRef, error) {
	m, err := g.api.ChannelMessageSendEmbed(string(channelID), embed(content), discordgo.WithContext(ctx))
	if err != nil {
		return contest.MessageRef{}, fmt.Errorf("sending message to channel %s: %w", channelID, err)
	}
	g.log.Debugf("Sent %q to channel %s as %s", content.Title, channelID, m.ID)
	return contest.MessageRef{ChannelID: channelID, MessageID: m.ID}, nil
}

func (g *Gateway) Pin(ctx context.Context, ref contest.MessageRef) error {
	if err := g.api.ChannelMessagePin(string(ref.ChannelID), ref.MessageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("pinning message %s: %w", ref.MessageID, err)
	}
	return nil
}

func (g *Gateway) Unpin(ctx context.Context, ref contest.MessageRef) error {
	if err := g.api.ChannelMessageUnpin(string(ref.ChannelID), ref.MessageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("unpinning message %s: %w", ref.MessageID, err)
	}
	return nil
}

func (g *Gateway) Delete(ctx context.Context, ref contest.MessageRef) error {
	if err := g.api.ChannelMessageDelete(string(ref.ChannelID), ref.MessageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("deleting message %s: %w", ref.MessageID, err)
	}
	return nil
}
