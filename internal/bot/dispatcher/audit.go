package dispatcher

import (
	"context"

	"github.com/robalyx/modreport/internal/bot/report"
	"github.com/robalyx/modreport/internal/bot/review"
)

// AuditLog records submitted reports and the moderator actions taken on them.
// finished is true when the action closed the review.
type AuditLog interface {
	RecordReport(ctx context.Context, session *review.Session) error
	RecordAction(
		ctx context.Context, session *review.Session, action review.Action, moderator report.User, finished bool,
	) error
}

// NopAuditLog discards every record.
type NopAuditLog struct{}

func (NopAuditLog) RecordReport(context.Context, *review.Session) error { return nil }

func (NopAuditLog) RecordAction(context.Context, *review.Session, review.Action, report.User, bool) error {
	return nil
}
