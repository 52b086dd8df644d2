package dispatcher

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/modreport/internal/bot/report"
)

// ErrDirectMessagesClosed is returned by SendDirectMessage when the recipient
// does not accept direct messages from the bot.
var ErrDirectMessagesClosed = errors.New("recipient does not accept direct messages")

// Channel is a guild text channel.
type Channel struct {
	ID   snowflake.ID
	Name string
}

// Gateway is the messaging surface the dispatcher acts through.
// Lookups report missing entities with errors wrapping report.ErrNotFound.
// SendDirectMessage reports closed DMs with errors wrapping ErrDirectMessagesClosed.
type Gateway interface {
	report.Resolver

	SendMessage(ctx context.Context, channelID snowflake.ID, content string) (snowflake.ID, error)
	SendDirectMessage(ctx context.Context, userID snowflake.ID, content string) error
	ReplyTo(ctx context.Context, channelID, messageID snowflake.ID, content string) error
	DeleteMessage(ctx context.Context, channelID, messageID snowflake.ID) error
	AddReaction(ctx context.Context, channelID, messageID snowflake.ID, emoji string) error
	BanMember(ctx context.Context, guildID, userID snowflake.ID, reason string) error
	GuildChannels(ctx context.Context, guildID snowflake.ID) ([]Channel, error)
}

// Classifier scores the text of a forwarded channel message.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// MessageEvent is an inbound message. GuildID is zero for direct messages.
type MessageEvent struct {
	ID        snowflake.ID
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	Author    report.User
	Content   string
}

// ReactionEvent is a reaction added to a guild message.
type ReactionEvent struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	MessageID snowflake.ID
	Emoji     string
	User      report.User
}
