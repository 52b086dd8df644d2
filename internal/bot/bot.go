package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	disgoEvents "github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robalyx/modreport/internal/ai"
	"github.com/robalyx/modreport/internal/bot/adapter"
	"github.com/robalyx/modreport/internal/bot/dispatcher"
	"github.com/robalyx/modreport/internal/bot/events"
	"github.com/robalyx/modreport/internal/bot/registry"
	"github.com/robalyx/modreport/internal/database"
	"github.com/robalyx/modreport/internal/redis"
	"github.com/robalyx/modreport/internal/setup"
	"go.uber.org/zap"
)

// Bot connects the Discord client to the report and review workflow.
type Bot struct {
	client     bot.Client
	dispatcher *dispatcher.Dispatcher
	registry   registry.Registry
	classifier *ai.Client
	logger     *zap.Logger
}

// New initializes a Bot from the application's shared resources. It builds the
// session registry, classifier and dispatcher and configures the Discord client
// with the intents and listeners the workflow needs.
func New(app *setup.App) (*Bot, error) {
	logger := app.Logger.Named("bot")
	cfg := app.Config.Bot

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Pick where sessions live
	reg, err := newRegistry(app)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		registry: reg,
		logger:   logger,
	}

	channels := dispatcher.NewChannels(cfg.Moderation.Group)

	// Listeners are bound to the dispatcher after it is created below
	var (
		guildHandler   *events.GuildEventHandler
		messageHandler *events.MessageEventHandler
	)

	client, err := disgo.New(cfg.Discord.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
				gateway.IntentDirectMessages,
				gateway.IntentGuildMessageReactions,
				gateway.IntentMessageContent,
			),
		),
		bot.WithEventListeners(&disgoEvents.ListenerAdapter{
			OnGuildReady:              func(e *disgoEvents.GuildReady) { guildHandler.OnGuildReady(e) },
			OnGuildJoin:               func(e *disgoEvents.GuildJoin) { guildHandler.OnGuildJoin(e) },
			OnGuildLeave:              func(e *disgoEvents.GuildLeave) { guildHandler.OnGuildLeave(e) },
			OnGuildChannelCreate:      func(e *disgoEvents.GuildChannelCreate) { guildHandler.OnGuildChannelCreate(e) },
			OnGuildChannelUpdate:      func(e *disgoEvents.GuildChannelUpdate) { guildHandler.OnGuildChannelUpdate(e) },
			OnDMMessageCreate:         func(e *disgoEvents.DMMessageCreate) { messageHandler.OnDMMessageCreate(e) },
			OnGuildMessageCreate:      func(e *disgoEvents.GuildMessageCreate) { messageHandler.OnGuildMessageCreate(e) },
			OnGuildMessageReactionAdd: func(e *disgoEvents.GuildMessageReactionAdd) { messageHandler.OnGuildMessageReactionAdd(e) },
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}

	b.client = client

	// Build the classifier used to score forwarded messages
	opts := []dispatcher.Option{
		dispatcher.WithAuditLog(database.NewAuditLog(app.DB, logger)),
		dispatcher.WithMetrics(dispatcher.NewMetrics(prometheus.DefaultRegisterer)),
	}

	var classifierOpts []ai.Option
	if cfg.Classifier.CacheTTL > 0 {
		cacheClient, err := app.RedisManager.GetClient(redis.ClassifierCacheDBIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to get classifier cache client: %w", err)
		}
		classifierOpts = append(classifierOpts,
			ai.WithCache(cacheClient, time.Duration(cfg.Classifier.CacheTTL)*time.Minute))
	}

	classifier, err := ai.New(&app.Config.Common, &cfg.Classifier, logger, classifierOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}
	if classifier != nil {
		b.classifier = classifier
		opts = append(opts, dispatcher.WithClassifier(classifier))
	}

	b.dispatcher = dispatcher.New(dispatcher.Config{
		SelfID:      client.ID(),
		Group:       cfg.Moderation.Group,
		EnforceBans: cfg.Moderation.EnforceBans,
	}, adapter.NewGateway(client), reg, channels, logger, opts...)

	guildHandler = events.NewGuildEventHandler(b.dispatcher, channels, logger)
	messageHandler = events.NewMessageEventHandler(b.dispatcher, logger)

	return b, nil
}

// newRegistry returns the configured session registry.
func newRegistry(app *setup.App) (registry.Registry, error) {
	cfg := app.Config.Bot.Registry

	switch cfg.Backend {
	case "", "memory":
		return registry.NewMemory(), nil
	case "redis":
		client, err := app.RedisManager.GetClient(redis.RegistryDBIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to get registry redis client: %w", err)
		}
		return registry.NewRedis(client, time.Duration(cfg.SessionTTL)*time.Hour, app.Logger), nil
	default:
		return nil, fmt.Errorf("unknown registry backend %q", cfg.Backend)
	}
}

// Start opens the gateway connection.
func (b *Bot) Start(ctx context.Context) error {
	if counts, err := b.registry.Counts(ctx); err == nil {
		b.logger.Info("Resuming open sessions",
			zap.Int("reports", counts.Reports),
			zap.Int("reviews", counts.Reviews))
	}

	b.logger.Info("Starting bot")
	return b.client.OpenGateway(ctx)
}

// Close gracefully shuts down the Discord gateway connection.
func (b *Bot) Close() {
	b.logger.Info("Closing bot")
	b.client.Close(context.Background())

	if b.classifier != nil {
		b.classifier.Close()
	}
}
