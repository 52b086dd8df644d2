package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/robalyx/modreport/internal/setup/config"
	"github.com/robalyx/modreport/pkg/utils"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// guard protects a remote backend with a concurrency limit, a circuit breaker,
// retries and an overall timeout.
type guard struct {
	name      string
	backend   Classifier
	breaker   *gobreaker.CircuitBreaker
	semaphore *semaphore.Weighted
	retry     utils.RetryOptions
	timeout   time.Duration
	logger    *zap.Logger
}

func newGuard(
	name string, backend Classifier, common *config.CommonConfig,
	timeout time.Duration, concurrency int64, logger *zap.Logger,
) *guard {
	logger = logger.With(zap.String("backend", name))
	cb := common.CircuitBreaker

	consecutive := cb.ConsecutiveFailures
	if consecutive == 0 {
		consecutive = 5
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cb.MaxRequests,
		Interval:    time.Duration(cb.Interval) * time.Millisecond,
		Timeout:     time.Duration(cb.Timeout) * time.Millisecond,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutive
		},
		IsSuccessful: func(err error) bool {
			// Refusals and caller cancellation say nothing about backend health
			return err == nil || errors.Is(err, utils.ErrContentBlocked) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	retry := utils.GetClassifierRetryOptions()
	if common.Retry.MaxRetries > 0 {
		retry.MaxRetries = common.Retry.MaxRetries
	}
	if common.Retry.Delay > 0 {
		retry.InitialInterval = time.Duration(common.Retry.Delay) * time.Millisecond
	}
	if common.Retry.MaxDelay > 0 {
		retry.MaxInterval = time.Duration(common.Retry.MaxDelay) * time.Millisecond
	}
	retry.MaxElapsedTime = timeout

	return &guard{
		name:      name,
		backend:   backend,
		breaker:   gobreaker.NewCircuitBreaker(settings),
		semaphore: semaphore.NewWeighted(concurrency),
		retry:     retry,
		timeout:   timeout,
		logger:    logger,
	}
}

// Classify runs the backend under the guard's limits.
func (g *guard) Classify(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.semaphore.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer g.semaphore.Release(1)

	result, err := utils.WithRetry(ctx, func() (string, error) {
		result, err := g.breaker.Execute(func() (any, error) {
			return g.backend.Classify(ctx, text)
		})
		if err != nil {
			if isPermanent(err) {
				return "", backoff.Permanent(err)
			}

			g.logger.Warn("Classification attempt failed", zap.Error(err))

			return "", err
		}

		return result.(string), nil
	}, g.retry)
	if err != nil {
		return "", fmt.Errorf("%s: %w", g.name, err)
	}

	return result, nil
}

// isPermanent reports whether retrying err cannot succeed.
func isPermanent(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) ||
		errors.Is(err, utils.ErrContentBlocked) {
		return true
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 &&
			apiErr.StatusCode != http.StatusTooManyRequests
	}

	return false
}
