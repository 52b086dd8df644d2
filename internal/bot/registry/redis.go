package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/disgoorg/snowflake/v2"
	"github.com/redis/rueidis"
	"github.com/robalyx/modreport/internal/bot/report"
	"github.com/robalyx/modreport/internal/bot/review"
	"go.uber.org/zap"
)

const (
	// ReportKeyPrefix namespaces report sessions. Keys are formatted as "modreport:report:{userID}".
	ReportKeyPrefix = "modreport:report:"
	// ReviewKeyPrefix namespaces review sessions. Keys are formatted as "modreport:review:{messageID}".
	ReviewKeyPrefix = "modreport:review:"

	scanBatchSize = 100
)

// Redis stores sessions as JSON strings so they survive restarts.
// A positive ttl lets abandoned sessions expire; each save refreshes it.
type Redis struct {
	client rueidis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis creates a Redis backed registry. A ttl of zero keeps sessions until resolved.
func NewRedis(client rueidis.Client, ttl time.Duration, logger *zap.Logger) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		logger: logger.Named("registry"),
	}
}

// Report loads the report session opened by userID.
func (r *Redis) Report(ctx context.Context, userID snowflake.ID) (*report.Session, error) {
	var session report.Session
	if err := r.get(ctx, reportKey(userID), &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// SaveReport writes session under userID, refreshing its expiry.
func (r *Redis) SaveReport(ctx context.Context, userID snowflake.ID, session *report.Session) error {
	data, err := sonic.MarshalString(session)
	if err != nil {
		return fmt.Errorf("failed to marshal report session: %w", err)
	}

	return r.client.Do(ctx, r.setCmd(reportKey(userID), data)).Error()
}

// DeleteReport removes the report session of userID, if any.
func (r *Redis) DeleteReport(ctx context.Context, userID snowflake.ID) error {
	return r.client.Do(ctx, r.client.B().Del().Key(reportKey(userID)).Build()).Error()
}

// Review loads the review session tracked by messageID.
func (r *Redis) Review(ctx context.Context, messageID snowflake.ID) (*review.Session, error) {
	var session review.Session
	if err := r.get(ctx, reviewKey(messageID), &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// SaveReview writes session under its tracking message id, refreshing its expiry.
func (r *Redis) SaveReview(ctx context.Context, session *review.Session) error {
	data, err := sonic.MarshalString(session)
	if err != nil {
		return fmt.Errorf("failed to marshal review session: %w", err)
	}

	return r.client.Do(ctx, r.setCmd(reviewKey(session.TrackingMessageID), data)).Error()
}

// MoveReview writes session under its tracking message id and deletes oldMessageID
// in one MULTI/EXEC transaction.
func (r *Redis) MoveReview(ctx context.Context, oldMessageID snowflake.ID, session *review.Session) error {
	data, err := sonic.MarshalString(session)
	if err != nil {
		return fmt.Errorf("failed to marshal review session: %w", err)
	}

	// Write the new key and drop the old one in a single transaction
	for _, resp := range r.client.DoMulti(ctx,
		r.client.B().Multi().Build(),
		r.setCmd(reviewKey(session.TrackingMessageID), data),
		r.client.B().Del().Key(reviewKey(oldMessageID)).Build(),
		r.client.B().Exec().Build(),
	) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("failed to move review session: %w", err)
		}
	}

	return nil
}

// DeleteReview removes the review session tracked by messageID, if any.
func (r *Redis) DeleteReview(ctx context.Context, messageID snowflake.ID) error {
	return r.client.Do(ctx, r.client.B().Del().Key(reviewKey(messageID)).Build()).Error()
}

// Counts scans the keyspace for open report and review sessions.
func (r *Redis) Counts(ctx context.Context) (Counts, error) {
	reports, err := r.count(ctx, ReportKeyPrefix+"*")
	if err != nil {
		return Counts{}, err
	}

	reviews, err := r.count(ctx, ReviewKeyPrefix+"*")
	if err != nil {
		return Counts{}, err
	}

	return Counts{Reports: reports, Reviews: reviews}, nil
}

// get loads and decodes the JSON value at key.
func (r *Redis) get(ctx context.Context, key string, v any) error {
	data, err := r.client.Do(ctx, r.client.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err := sonic.UnmarshalString(data, v); err != nil {
		// A corrupt entry cannot be resumed, so treat it as absent
		r.logger.Error("Failed to unmarshal session", zap.String("key", key), zap.Error(err))
		return errors.Join(ErrNotFound, err)
	}

	return nil
}

// setCmd builds a SET, adding an expiry when a ttl is configured.
func (r *Redis) setCmd(key, value string) rueidis.Completed {
	if r.ttl > 0 {
		return r.client.B().Set().Key(key).Value(value).Ex(r.ttl).Build()
	}
	return r.client.B().Set().Key(key).Value(value).Build()
}

// count walks the keyspace for keys matching pattern.
func (r *Redis) count(ctx context.Context, pattern string) (int, error) {
	var (
		cursor uint64
		total  int
	)

	for {
		entry, err := r.client.Do(ctx,
			r.client.B().Scan().Cursor(cursor).Match(pattern).Count(scanBatchSize).Build(),
		).AsScanEntry()
		if err != nil {
			return 0, fmt.Errorf("failed to scan %s: %w", pattern, err)
		}

		total += len(entry.Elements)
		cursor = entry.Cursor

		if cursor == 0 {
			return total, nil
		}
	}
}

func reportKey(userID snowflake.ID) string {
	return ReportKeyPrefix + userID.String()
}

func reviewKey(messageID snowflake.ID) string {
	return ReviewKeyPrefix + messageID.String()
}
