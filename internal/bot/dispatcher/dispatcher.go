// Package dispatcher routes chat events to report and review sessions and carries
// out their replies and effects through the gateway.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/robalyx/modreport/internal/bot/constants"
	"github.com/robalyx/modreport/internal/bot/registry"
	"github.com/robalyx/modreport/internal/bot/report"
	"github.com/robalyx/modreport/internal/bot/review"
	"github.com/robalyx/modreport/pkg/utils"
	"go.uber.org/zap"
)

var (
	// ErrNoModeratorChannel is returned when a report targets a guild without a moderator channel.
	ErrNoModeratorChannel = errors.New("guild has no moderator channel")
	// ErrNoMonitoredChannel is returned by Discover for guilds without a monitored channel.
	ErrNoMonitoredChannel = errors.New("guild has no monitored channel")
)

// eventTimeout bounds the work done for one event once its session is locked.
const eventTimeout = 30 * time.Second

// Config holds the dispatcher settings.
type Config struct {
	SelfID      snowflake.ID
	Group       string
	EnforceBans bool
}

// Dispatcher handles inbound events concurrently. Events touching the same
// report session (keyed by reporter) or review session (keyed by the reacted
// message) are serialized; channel forwarding holds no session and takes no lock.
type Dispatcher struct {
	config     Config
	gateway    Gateway
	registry   registry.Registry
	channels   *Channels
	classifier Classifier
	audit      AuditLog
	metrics    *Metrics
	logger     *zap.Logger
	reports    *keyedMutex
	reviews    *keyedMutex
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithClassifier scores forwarded channel messages with c.
func WithClassifier(c Classifier) Option {
	return func(d *Dispatcher) { d.classifier = c }
}

// WithAuditLog records reports and review actions to a.
func WithAuditLog(a AuditLog) Option {
	return func(d *Dispatcher) { d.audit = a }
}

// WithMetrics counts activity with m.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// New creates a dispatcher.
func New(config Config, gateway Gateway, reg registry.Registry, channels *Channels, logger *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		config:   config,
		gateway:  gateway,
		registry: reg,
		channels: channels,
		audit:    NopAuditLog{},
		logger:   logger.Named("dispatcher"),
		reports:  newKeyedMutex(),
		reviews:  newKeyedMutex(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Dispatcher) isSelf(id snowflake.ID) bool {
	return id == d.config.SelfID
}

// Discover resolves and caches the channels of a guild.
func (d *Dispatcher) Discover(ctx context.Context, guildID snowflake.ID) error {
	found, err := d.channels.Discover(ctx, d.gateway, guildID)
	if err != nil {
		d.gatewayFailed("guild_channels")
		return err
	}

	if found.Moderator == 0 {
		return fmt.Errorf("%w: guild %s", ErrNoModeratorChannel, guildID)
	}

	if found.Monitored == 0 {
		return fmt.Errorf("%w: guild %s", ErrNoMonitoredChannel, guildID)
	}

	return nil
}

// HandleDirectMessage advances the sender's report session.
func (d *Dispatcher) HandleDirectMessage(ctx context.Context, event MessageEvent) {
	if d.isSelf(event.Author.ID) {
		return
	}

	unlock := d.reports.lock(event.Author.ID)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()

	logger := d.logger.With(zap.String("userID", event.Author.ID.String()))

	if utils.IsKeyword(event.Content, constants.HelpKeyword) {
		d.send(ctx, logger, event.ChannelID, constants.HelpText)
		return
	}

	session, err := d.registry.Report(ctx, event.Author.ID)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		// Only messages starting a report open a session
		if !utils.HasKeywordPrefix(event.Content, constants.ReportKeyword) {
			return
		}
		session = report.NewSession(event.Author)
	case err != nil:
		logger.Error("Failed to load report session", zap.Error(err))
		return
	}

	// Transition a copy so a failed send leaves the stored session untouched
	next := session.Clone()
	for _, reply := range next.Handle(ctx, d.gateway, event.Content) {
		if !d.send(ctx, logger, event.ChannelID, reply) {
			return
		}
	}

	if !next.IsComplete() {
		if err := d.registry.SaveReport(ctx, event.Author.ID, next); err != nil {
			logger.Error("Failed to save report session", zap.Error(err))
		}
		return
	}

	if next.Submitted() {
		if err := d.submit(ctx, logger, next); err != nil {
			if !errors.Is(err, ErrNoModeratorChannel) {
				logger.Error("Failed to submit report", zap.Error(err))
				d.send(ctx, logger, event.ChannelID,
					"I couldn't deliver your report to the moderators right now. Please send your last answer again.")
				return
			}

			logger.Error("Report targets a guild without a moderator channel",
				zap.String("guildID", next.Message.GuildID.String()))
			d.send(ctx, logger, event.ChannelID,
				"I'm sorry, the moderators of that server have not set up a channel for reports, so I can't deliver it.")
		}
	} else if d.metrics != nil {
		d.metrics.ReportsCancelled.Inc()
	}

	if err := d.registry.DeleteReport(ctx, event.Author.ID); err != nil {
		logger.Error("Failed to delete report session", zap.Error(err))
	}
}

// submit posts the summary of a completed report and opens its review.
func (d *Dispatcher) submit(ctx context.Context, logger *zap.Logger, session *report.Session) error {
	snapshot, err := review.NewSnapshot(session)
	if err != nil {
		return err
	}

	modChannelID, ok := d.channels.Moderator(snapshot.Message.GuildID)
	if !ok {
		return ErrNoModeratorChannel
	}

	messageID, err := d.gateway.SendMessage(ctx, modChannelID, RenderSummary(snapshot))
	if err != nil {
		d.gatewayFailed("send_message")
		return fmt.Errorf("failed to post report summary: %w", err)
	}

	reviewSession := review.NewSession(uuid.New(), snapshot, modChannelID, messageID)
	if err := d.registry.SaveReview(ctx, reviewSession); err != nil {
		// Drop the summary; the reporter's retry posts a fresh one
		if delErr := d.gateway.DeleteMessage(ctx, modChannelID, messageID); delErr != nil {
			d.gatewayFailed("delete_message")
			logger.Warn("Failed to remove summary of unsaved review",
				zap.String("messageID", messageID.String()),
				zap.Error(delErr))
		}
		return fmt.Errorf("failed to save review session: %w", err)
	}

	d.addControls(ctx, logger, modChannelID, messageID, review.StageUserReview)

	if err := d.audit.RecordReport(ctx, reviewSession); err != nil {
		logger.Error("Failed to record report", zap.Error(err))
	}

	if d.metrics != nil {
		d.metrics.ReportsSubmitted.Inc()
	}

	logger.Info("Report submitted",
		zap.String("reportID", reviewSession.ReportID.String()),
		zap.String("guildID", snapshot.Message.GuildID.String()),
		zap.String("reason", string(snapshot.Reason)))

	return nil
}

// HandleChannelMessage forwards messages from a guild's monitored channel to its moderators.
func (d *Dispatcher) HandleChannelMessage(ctx context.Context, event MessageEvent) {
	if d.isSelf(event.Author.ID) || event.GuildID == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()

	monitoredID, ok := d.channels.Monitored(event.GuildID)
	if !ok || monitoredID != event.ChannelID {
		return
	}

	logger := d.logger.With(
		zap.String("guildID", event.GuildID.String()),
		zap.String("messageID", event.ID.String()))

	modChannelID, ok := d.channels.Moderator(event.GuildID)
	if !ok {
		logger.Warn("Monitored message has no moderator channel to go to")
		return
	}

	if !d.send(ctx, logger, modChannelID, forwardText(event.Author.Username, event.Content)) {
		return
	}

	result := event.Content
	if d.classifier != nil {
		scored, err := d.classifier.Classify(ctx, event.Content)
		if err != nil {
			logger.Warn("Classifier failed, forwarding raw text", zap.Error(err))
			if d.metrics != nil {
				d.metrics.ClassifierFailures.Inc()
			}
		} else {
			result = scored
		}
	}

	if !d.send(ctx, logger, modChannelID, evaluatedText(result)) {
		return
	}

	if d.metrics != nil {
		d.metrics.MessagesForwarded.Inc()
	}
}

// HandleReaction applies a moderator reaction to the review tracked by the reacted message.
func (d *Dispatcher) HandleReaction(ctx context.Context, event ReactionEvent) {
	if d.isSelf(event.User.ID) || !d.channels.IsModerator(event.GuildID, event.ChannelID) {
		return
	}

	unlock := d.reviews.lock(event.MessageID)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()

	logger := d.logger.With(
		zap.String("messageID", event.MessageID.String()),
		zap.String("moderatorID", event.User.ID.String()))

	session, err := d.registry.Review(ctx, event.MessageID)
	if err != nil {
		if !errors.Is(err, registry.ErrNotFound) {
			logger.Error("Failed to load review session", zap.Error(err))
		}
		return
	}

	templates := session.Templates(d.config.Group, event.User.Username, d.config.EnforceBans)
	outcome, ok := review.Transition(session.Stage, event.Emoji, templates)
	if !ok {
		logger.Debug("Ignoring reaction outside the action set", zap.String("emoji", event.Emoji))
		return
	}

	logger = logger.With(
		zap.String("reportID", session.ReportID.String()),
		zap.String("stage", session.Stage.String()),
		zap.String("action", string(outcome.Action)))

	trackingID, err := d.apply(ctx, logger, session, outcome)
	if err != nil {
		logger.Error("Failed to apply review action", zap.Error(err))
		return
	}

	if outcome.Finished {
		err = d.registry.DeleteReview(ctx, event.MessageID)
	} else {
		err = d.registry.MoveReview(ctx, event.MessageID, session.Advance(outcome.Next, trackingID))
	}
	if err != nil {
		logger.Error("Failed to update review session", zap.Error(err))
		return
	}

	// Controls go on only once reactions to the prompt can find the session
	if !outcome.Finished {
		d.addControls(ctx, logger, session.ModChannelID, trackingID, outcome.Next)
	}

	if err := d.audit.RecordAction(ctx, session, outcome.Action, event.User, outcome.Finished); err != nil {
		logger.Error("Failed to record review action", zap.Error(err))
	}

	if d.metrics != nil {
		d.metrics.ReviewActions.WithLabelValues(session.Stage.String(), string(outcome.Action)).Inc()
	}

	logger.Info("Review action applied", zap.Bool("finished", outcome.Finished))
}

// apply carries out the effects of an outcome in order and returns the id of
// the posted prompt, if any. Effects that went out on an earlier attempt of the
// same action are skipped, and each success is checkpointed so a failure part
// way through resumes where it stopped.
func (d *Dispatcher) apply(
	ctx context.Context, logger *zap.Logger, session *review.Session, outcome review.Outcome,
) (snowflake.ID, error) {
	var trackingID snowflake.ID

	start := session.Resume(outcome.Action)
	if start > 0 {
		logger.Info("Resuming interrupted review action", zap.Int("applied", start))
	}

	for i := start; i < len(outcome.Effects); i++ {
		effect := outcome.Effects[i]

		id, err := d.applyEffect(ctx, logger, session, effect)
		if err != nil {
			d.gatewayFailed(effect.Kind.String())
			return 0, fmt.Errorf("%s effect failed: %w", effect.Kind, err)
		}
		if effect.Kind == review.EffectPrompt {
			trackingID = id
		}

		// The last effect is followed by moving or deleting the session instead
		if i+1 < len(outcome.Effects) {
			if err := d.registry.SaveReview(ctx, session.Checkpoint(outcome.Action, i+1)); err != nil {
				logger.Warn("Failed to checkpoint review action", zap.Int("applied", i+1), zap.Error(err))
			}
		}
	}

	return trackingID, nil
}

// applyEffect performs one effect against the reported message.
func (d *Dispatcher) applyEffect(
	ctx context.Context, logger *zap.Logger, session *review.Session, effect review.Effect,
) (snowflake.ID, error) {
	target := session.Report.Message

	switch effect.Kind {
	case review.EffectAnnounce:
		_, err := d.gateway.SendMessage(ctx, session.ModChannelID, effect.Text)
		return 0, err
	case review.EffectChannelNotice:
		_, err := d.gateway.SendMessage(ctx, target.ChannelID, effect.Text)
		return 0, err
	case review.EffectDirectMessage:
		err := d.gateway.SendDirectMessage(ctx, target.Author.ID, effect.Text)
		if errors.Is(err, ErrDirectMessagesClosed) {
			// A user who blocks the bot must not hold the review open
			logger.Warn("Reported user does not accept direct messages", zap.Error(err))
			_, err = d.gateway.SendMessage(ctx, session.ModChannelID, undeliveredText(target.Author.Username))
		}
		return 0, err
	case review.EffectReply:
		return 0, d.gateway.ReplyTo(ctx, target.ChannelID, target.ID, effect.Text)
	case review.EffectDeleteMessage:
		err := d.gateway.DeleteMessage(ctx, target.ChannelID, target.ID)
		if errors.Is(err, report.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	case review.EffectBan:
		return 0, d.gateway.BanMember(ctx, target.GuildID, target.Author.ID, effect.Text)
	case review.EffectPrompt:
		return d.gateway.SendMessage(ctx, session.ModChannelID, effect.Text)
	}

	return 0, fmt.Errorf("unknown effect %d", effect.Kind)
}

// addControls reacts to a prompt with every emoji of the stage. Failures only cost convenience.
func (d *Dispatcher) addControls(ctx context.Context, logger *zap.Logger, channelID, messageID snowflake.ID, stage review.Stage) {
	for _, emoji := range review.Controls(stage) {
		if err := d.gateway.AddReaction(ctx, channelID, messageID, emoji); err != nil {
			d.gatewayFailed("add_reaction")
			logger.Warn("Failed to add reaction control",
				zap.String("messageID", messageID.String()),
				zap.String("emoji", emoji),
				zap.Error(err))
			return
		}
	}
}

// send posts content to a channel and reports whether it succeeded.
func (d *Dispatcher) send(ctx context.Context, logger *zap.Logger, channelID snowflake.ID, content string) bool {
	if _, err := d.gateway.SendMessage(ctx, channelID, content); err != nil {
		d.gatewayFailed("send_message")
		logger.Error("Failed to send message", zap.String("channelID", channelID.String()), zap.Error(err))
		return false
	}

	return true
}

func (d *Dispatcher) gatewayFailed(operation string) {
	if d.metrics != nil {
		d.metrics.GatewayFailures.WithLabelValues(operation).Inc()
	}
}
