// Package adapter implements the dispatcher gateway on top of a disgo client.
package adapter

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/modreport/internal/bot/dispatcher"
	"github.com/robalyx/modreport/internal/bot/report"
)

// jsonErrorCannotMessageUser is returned when a user has closed their DMs to the bot.
const jsonErrorCannotMessageUser rest.JSONErrorCode = 50007

// Gateway sends and looks up messages through the Discord REST API.
type Gateway struct {
	client bot.Client
}

// NewGateway wraps a disgo client.
func NewGateway(client bot.Client) *Gateway {
	return &Gateway{client: client}
}

// ResolveGuild checks the bot is a member of the guild.
func (g *Gateway) ResolveGuild(ctx context.Context, guildID snowflake.ID) error {
	if _, ok := g.client.Caches().Guild(guildID); ok {
		return nil
	}

	_, err := g.client.Rest().GetGuild(guildID, false, rest.WithCtx(ctx))
	return wrapNotFound(err, "guild")
}

// ResolveChannel checks the channel exists and belongs to the guild.
func (g *Gateway) ResolveChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	channel, err := g.client.Rest().GetChannel(channelID, rest.WithCtx(ctx))
	if err != nil {
		return wrapNotFound(err, "channel")
	}

	guildChannel, ok := channel.(discord.GuildChannel)
	if !ok || guildChannel.GuildID() != guildID {
		return fmt.Errorf("channel %s is not in guild %s: %w", channelID, guildID, report.ErrNotFound)
	}

	return nil
}

// FetchMessage loads a message and snapshots the parts a report keeps.
func (g *Gateway) FetchMessage(ctx context.Context, guildID, channelID, messageID snowflake.ID) (*report.Message, error) {
	msg, err := g.client.Rest().GetMessage(channelID, messageID, rest.WithCtx(ctx))
	if err != nil {
		return nil, wrapNotFound(err, "message")
	}

	return &report.Message{
		GuildID:   guildID,
		ChannelID: msg.ChannelID,
		ID:        msg.ID,
		Author:    report.User{ID: msg.Author.ID, Username: msg.Author.Username},
		Content:   msg.Content,
	}, nil
}

// SendMessage posts content to a channel and returns the new message id.
func (g *Gateway) SendMessage(ctx context.Context, channelID snowflake.ID, content string) (snowflake.ID, error) {
	msg, err := g.client.Rest().CreateMessage(channelID, discord.NewMessageCreateBuilder().
		SetContent(content).
		SetAllowedMentions(&discord.AllowedMentions{}).
		Build(), rest.WithCtx(ctx))
	if err != nil {
		return 0, wrapNotFound(err, "channel")
	}

	return msg.ID, nil
}

// SendDirectMessage opens a DM channel with the user and posts content to it.
func (g *Gateway) SendDirectMessage(ctx context.Context, userID snowflake.ID, content string) error {
	channel, err := g.client.Rest().CreateDMChannel(userID, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}

	_, err = g.client.Rest().CreateMessage(channel.ID(), discord.NewMessageCreateBuilder().
		SetContent(content).
		SetAllowedMentions(&discord.AllowedMentions{}).
		Build(), rest.WithCtx(ctx))
	if rest.IsJSONErrorCode(err, jsonErrorCannotMessageUser) {
		return fmt.Errorf("user %s: %w: %w", userID, dispatcher.ErrDirectMessagesClosed, err)
	}

	return wrapNotFound(err, "channel")
}

// ReplyTo posts content as a reply to a message.
func (g *Gateway) ReplyTo(ctx context.Context, channelID, messageID snowflake.ID, content string) error {
	_, err := g.client.Rest().CreateMessage(channelID, discord.NewMessageCreateBuilder().
		SetContent(content).
		SetMessageReferenceByID(messageID).
		SetAllowedMentions(&discord.AllowedMentions{}).
		Build(), rest.WithCtx(ctx))

	return wrapNotFound(err, "message")
}

// DeleteMessage removes a message.
func (g *Gateway) DeleteMessage(ctx context.Context, channelID, messageID snowflake.ID) error {
	return wrapNotFound(g.client.Rest().DeleteMessage(channelID, messageID, rest.WithCtx(ctx)), "message")
}

// AddReaction reacts to a message with a unicode emoji.
func (g *Gateway) AddReaction(ctx context.Context, channelID, messageID snowflake.ID, emoji string) error {
	return wrapNotFound(g.client.Rest().AddReaction(channelID, messageID, emoji, rest.WithCtx(ctx)), "message")
}

// BanMember bans a user from a guild, recording reason in the audit log.
func (g *Gateway) BanMember(ctx context.Context, guildID, userID snowflake.ID, reason string) error {
	return g.client.Rest().AddBan(guildID, userID, 0, rest.WithReason(reason), rest.WithCtx(ctx))
}

// GuildChannels lists the text channels of a guild.
func (g *Gateway) GuildChannels(ctx context.Context, guildID snowflake.ID) ([]dispatcher.Channel, error) {
	channels, err := g.client.Rest().GetGuildChannels(guildID, rest.WithCtx(ctx))
	if err != nil {
		return nil, wrapNotFound(err, "guild")
	}

	result := make([]dispatcher.Channel, 0, len(channels))
	for _, channel := range channels {
		if channel.Type() != discord.ChannelTypeGuildText {
			continue
		}

		result = append(result, dispatcher.Channel{ID: channel.ID(), Name: channel.Name()})
	}

	return result, nil
}

// wrapNotFound maps Discord's unknown entity errors to report.ErrNotFound.
func wrapNotFound(err error, what string) error {
	if err == nil {
		return nil
	}

	if rest.IsJSONErrorCode(err,
		rest.JSONErrorCodeUnknownGuild,
		rest.JSONErrorCodeUnknownChannel,
		rest.JSONErrorCodeUnknownMessage,
		rest.JSONErrorCodeMissingAccess,
	) {
		return fmt.Errorf("%s: %w: %w", what, report.ErrNotFound, err)
	}

	return fmt.Errorf("%s lookup failed: %w", what, err)
}
