package events

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/modreport/internal/bot/dispatcher"
	"go.uber.org/zap"
)

// GuildEventHandler keeps the moderator channel cache in step with the guilds the bot is in.
type GuildEventHandler struct {
	dispatcher *dispatcher.Dispatcher
	channels   *dispatcher.Channels
	logger     *zap.Logger
}

// NewGuildEventHandler creates a new instance of the guild event handler.
func NewGuildEventHandler(d *dispatcher.Dispatcher, channels *dispatcher.Channels, logger *zap.Logger) *GuildEventHandler {
	return &GuildEventHandler{
		dispatcher: d,
		channels:   channels,
		logger:     logger.Named("guild_events"),
	}
}

// OnGuildReady resolves the channels of a guild available at startup.
func (h *GuildEventHandler) OnGuildReady(event *events.GuildReady) {
	h.discover(event.Guild.ID, event.Guild.Name)
}

// OnGuildJoin handles the event when the bot joins a new guild.
func (h *GuildEventHandler) OnGuildJoin(event *events.GuildJoin) {
	h.logger.Info("Bot joined a new guild",
		zap.String("guildID", event.Guild.ID.String()),
		zap.String("guild_name", event.Guild.Name))

	h.discover(event.Guild.ID, event.Guild.Name)
}

// OnGuildLeave drops the cached channels of a guild the bot left.
func (h *GuildEventHandler) OnGuildLeave(event *events.GuildLeave) {
	h.logger.Info("Bot left a guild", zap.String("guildID", event.GuildID.String()))
	h.channels.Forget(event.GuildID)
}

// OnGuildChannelCreate refreshes the cache when a channel might be one we look for.
func (h *GuildEventHandler) OnGuildChannelCreate(event *events.GuildChannelCreate) {
	h.discover(event.GuildID, "")
}

// OnGuildChannelUpdate refreshes the cache when a channel is renamed.
func (h *GuildEventHandler) OnGuildChannelUpdate(event *events.GuildChannelUpdate) {
	h.discover(event.GuildID, "")
}

// discoverTimeout bounds the channel lookups for one guild.
const discoverTimeout = 30 * time.Second

func (h *GuildEventHandler) discover(guildID snowflake.ID, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), discoverTimeout)
	defer cancel()

	logger := h.logger.With(zap.String("guildID", guildID.String()), zap.String("guild_name", name))

	err := h.dispatcher.Discover(ctx, guildID)
	switch {
	case err == nil:
		logger.Debug("Resolved moderation channels")
	case errors.Is(err, dispatcher.ErrNoModeratorChannel):
		logger.Error("Guild has no moderator channel; reports for it will be refused", zap.Error(err))
	case errors.Is(err, dispatcher.ErrNoMonitoredChannel):
		logger.Warn("Guild has no monitored channel; no messages will be forwarded", zap.Error(err))
	default:
		logger.Error("Failed to resolve moderation channels", zap.Error(err))
	}
}
