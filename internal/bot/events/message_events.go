// Package events translates disgo gateway events into dispatcher events.
package events

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/robalyx/modreport/internal/bot/dispatcher"
	"github.com/robalyx/modreport/internal/bot/report"
	"go.uber.org/zap"
)

// MessageEventHandler forwards messages and reactions to the dispatcher.
type MessageEventHandler struct {
	dispatcher *dispatcher.Dispatcher
	logger     *zap.Logger
}

// NewMessageEventHandler creates a handler for message and reaction events.
func NewMessageEventHandler(d *dispatcher.Dispatcher, logger *zap.Logger) *MessageEventHandler {
	return &MessageEventHandler{
		dispatcher: d,
		logger:     logger.Named("message_events"),
	}
}

// OnDMMessageCreate handles direct messages to the bot.
func (h *MessageEventHandler) OnDMMessageCreate(event *events.DMMessageCreate) {
	if event.Message.Author.Bot {
		return
	}

	h.run("dm_message", func(ctx context.Context) {
		h.dispatcher.HandleDirectMessage(ctx, dispatcher.MessageEvent{
			ID:        event.MessageID,
			ChannelID: event.ChannelID,
			Author:    user(event.Message.Author),
			Content:   event.Message.Content,
		})
	})
}

// OnGuildMessageCreate handles messages posted in guild channels.
func (h *MessageEventHandler) OnGuildMessageCreate(event *events.GuildMessageCreate) {
	h.run("guild_message", func(ctx context.Context) {
		h.dispatcher.HandleChannelMessage(ctx, dispatcher.MessageEvent{
			ID:        event.MessageID,
			GuildID:   event.GuildID,
			ChannelID: event.ChannelID,
			Author:    user(event.Message.Author),
			Content:   event.Message.Content,
		})
	})
}

// OnGuildMessageReactionAdd handles reactions added to guild messages.
func (h *MessageEventHandler) OnGuildMessageReactionAdd(event *events.GuildMessageReactionAdd) {
	if event.Emoji.Name == nil || event.Member.User.Bot {
		return
	}

	h.run("reaction_add", func(ctx context.Context) {
		h.dispatcher.HandleReaction(ctx, dispatcher.ReactionEvent{
			GuildID:   event.GuildID,
			ChannelID: event.ChannelID,
			MessageID: event.MessageID,
			Emoji:     *event.Emoji.Name,
			User:      report.User{ID: event.UserID, Username: event.Member.User.Username},
		})
	})
}

// run handles an event and keeps a panic from taking down the gateway. The
// dispatcher bounds its own work once the event's session is locked, so waiting
// for the lock does not eat into that budget.
func (h *MessageEventHandler) run(name string, fn func(ctx context.Context)) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Panic in event handler", zap.String("event", name), zap.Any("panic", r))
		}
		h.logger.Debug("Event handled",
			zap.String("event", name),
			zap.Duration("duration", time.Since(start)))
	}()

	fn(context.Background())
}

func user(u discord.User) report.User {
	return report.User{ID: u.ID, Username: u.Username}
}
