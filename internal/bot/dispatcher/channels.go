package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/modreport/internal/bot/constants"
)

// GuildChannels holds the channels of one guild the bot works with. Zero ids are unset.
type GuildChannels struct {
	Moderator snowflake.ID
	Monitored snowflake.ID
}

// ChannelLister lists the text channels of a guild.
type ChannelLister interface {
	GuildChannels(ctx context.Context, guildID snowflake.ID) ([]Channel, error)
}

// Channels caches the moderator and monitored channel of each guild, found by name.
type Channels struct {
	moderatorName string
	monitoredName string
	guilds        map[snowflake.ID]GuildChannels
	mu            sync.RWMutex
}

// NewChannels creates a cache matching the channel names derived from group.
func NewChannels(group string) *Channels {
	return &Channels{
		moderatorName: fmt.Sprintf(constants.ModChannelFormat, group),
		monitoredName: fmt.Sprintf(constants.MonitorChannelFormat, group),
		guilds:        make(map[snowflake.ID]GuildChannels),
	}
}

// Discover looks up the channels of a guild and caches what it finds.
func (c *Channels) Discover(ctx context.Context, lister ChannelLister, guildID snowflake.ID) (GuildChannels, error) {
	channels, err := lister.GuildChannels(ctx, guildID)
	if err != nil {
		return GuildChannels{}, fmt.Errorf("failed to list channels of guild %s: %w", guildID, err)
	}

	var found GuildChannels
	for _, channel := range channels {
		switch channel.Name {
		case c.moderatorName:
			found.Moderator = channel.ID
		case c.monitoredName:
			found.Monitored = channel.ID
		}
	}

	c.Set(guildID, found)
	return found, nil
}

// Set stores the channels of a guild.
func (c *Channels) Set(guildID snowflake.ID, channels GuildChannels) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.guilds[guildID] = channels
}

// Forget drops a guild from the cache.
func (c *Channels) Forget(guildID snowflake.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.guilds, guildID)
}

// Moderator returns the moderator channel of a guild.
func (c *Channels) Moderator(guildID snowflake.ID) (snowflake.ID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id := c.guilds[guildID].Moderator
	return id, id != 0
}

// Monitored returns the monitored channel of a guild.
func (c *Channels) Monitored(guildID snowflake.ID) (snowflake.ID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id := c.guilds[guildID].Monitored
	return id, id != 0
}

// IsModerator reports whether channelID is the moderator channel of guildID.
func (c *Channels) IsModerator(guildID, channelID snowflake.ID) bool {
	id, ok := c.Moderator(guildID)
	return ok && id == channelID
}
