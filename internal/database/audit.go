package database

import (
	"context"
	"time"

	"github.com/robalyx/modreport/internal/bot/dispatcher"
	"github.com/robalyx/modreport/internal/bot/report"
	"github.com/robalyx/modreport/internal/bot/review"
	"github.com/robalyx/modreport/internal/database/types"
	"go.uber.org/zap"
)

// ReportStore is the part of the report model the audit log writes to.
type ReportStore interface {
	CreateReport(ctx context.Context, report *types.Report) error
	RecordAction(ctx context.Context, action *types.ModerationAction, resolved bool) error
}

// AuditLog persists submitted reports and moderator actions.
type AuditLog struct {
	store  ReportStore
	logger *zap.Logger
	now    func() time.Time
}

// NewAuditLog returns an audit log backed by the database, or a no-op log
// when the database is disabled.
func NewAuditLog(db Client, logger *zap.Logger) dispatcher.AuditLog {
	if db == nil {
		logger.Info("Audit log disabled, reports will not be persisted")
		return dispatcher.NopAuditLog{}
	}

	return NewAuditLogWithStore(db.Report(), logger)
}

// NewAuditLogWithStore returns an audit log writing to store.
func NewAuditLogWithStore(store ReportStore, logger *zap.Logger) *AuditLog {
	return &AuditLog{
		store:  store,
		logger: logger.Named("audit"),
		now:    time.Now,
	}
}

// RecordReport stores a report that was just delivered to moderators.
func (a *AuditLog) RecordReport(ctx context.Context, session *review.Session) error {
	snapshot := session.Report

	return a.store.CreateReport(ctx, &types.Report{
		ID:                session.ReportID,
		GuildID:           uint64(snapshot.Message.GuildID),
		ChannelID:         uint64(snapshot.Message.ChannelID),
		MessageID:         uint64(snapshot.Message.ID),
		ReporterID:        uint64(snapshot.Reporter.ID),
		ReporterName:      snapshot.Reporter.Username,
		ReportedUserID:    uint64(snapshot.Message.Author.ID),
		ReportedUserName:  snapshot.Message.Author.Username,
		Content:           snapshot.Message.Content,
		Reason:            string(snapshot.Reason),
		Category:          snapshot.Category,
		WantsDetails:      snapshot.WantsDetails,
		WantsBlock:        snapshot.WantsBlock,
		ModChannelID:      uint64(session.ModChannelID),
		TrackingMessageID: uint64(session.TrackingMessageID),
		Status:            types.ReportStatusOpen,
		CreatedAt:         a.now(),
	})
}

// RecordAction stores a moderator's reaction and resolves the report when the
// review was closed.
func (a *AuditLog) RecordAction(
	ctx context.Context, session *review.Session, action review.Action, moderator report.User, finished bool,
) error {
	return a.store.RecordAction(ctx, &types.ModerationAction{
		ReportID:      session.ReportID,
		Stage:         session.Stage.String(),
		Action:        string(action),
		ModeratorID:   uint64(moderator.ID),
		ModeratorName: moderator.Username,
		CreatedAt:     a.now(),
	}, finished)
}
