// Package registry owns the lifecycle of report and review sessions.
package registry

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/modreport/internal/bot/report"
	"github.com/robalyx/modreport/internal/bot/review"
)

// ErrNotFound is returned when no session is stored under a key.
var ErrNotFound = errors.New("session not found")

// Counts summarizes how many sessions are open.
type Counts struct {
	Reports int
	Reviews int
}

// Registry stores report sessions by reporter id and review sessions by the id
// of the moderator message currently carrying their reaction controls.
// Returned sessions are copies; callers persist changes through Save methods.
type Registry interface {
	Report(ctx context.Context, userID snowflake.ID) (*report.Session, error)
	SaveReport(ctx context.Context, userID snowflake.ID, session *report.Session) error
	DeleteReport(ctx context.Context, userID snowflake.ID) error

	Review(ctx context.Context, messageID snowflake.ID) (*review.Session, error)
	SaveReview(ctx context.Context, session *review.Session) error
	// MoveReview stores session under its tracking message id and removes
	// oldMessageID in one step.
	MoveReview(ctx context.Context, oldMessageID snowflake.ID, session *review.Session) error
	DeleteReview(ctx context.Context, messageID snowflake.ID) error

	Counts(ctx context.Context) (Counts, error)
}
