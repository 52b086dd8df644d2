package models

import (
	"context"
	"fmt"
	"time"

	"github.com/robalyx/modreport/internal/database/dbretry"
	"github.com/robalyx/modreport/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ReportModel handles database operations for reports and their actions.
type ReportModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewReport creates a new report model.
func NewReport(db *bun.DB, logger *zap.Logger) *ReportModel {
	return &ReportModel{
		db:     db,
		logger: logger.Named("db_report"),
	}
}

// CreateReport stores a submitted report. Submitting the same report twice is a no-op.
func (r *ReportModel) CreateReport(ctx context.Context, report *types.Report) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(report).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}

		return nil
	})
}

// RecordAction stores a moderator action and, when it closed the review,
// marks the report resolved in the same transaction.
func (r *ReportModel) RecordAction(ctx context.Context, action *types.ModerationAction, resolved bool) error {
	return dbretry.Transaction(ctx, r.db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(action).Exec(ctx); err != nil {
			return fmt.Errorf("failed to record action: %w", err)
		}

		if !resolved {
			return nil
		}

		_, err := tx.NewUpdate().
			Model((*types.Report)(nil)).
			Set("status = ?", types.ReportStatusResolved).
			Set("resolved_at = ?", action.CreatedAt).
			Where("id = ?", action.ReportID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve report: %w", err)
		}

		return nil
	})
}

// GetReportsSince retrieves reports created at or after since, oldest first.
func (r *ReportModel) GetReportsSince(ctx context.Context, since time.Time) ([]*types.Report, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Report, error) {
		var reports []*types.Report

		err := r.db.NewSelect().
			Model(&reports).
			Where("created_at >= ?", since).
			Order("created_at ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get reports: %w", err)
		}

		return reports, nil
	})
}

// GetActionsSince retrieves moderator actions taken at or after since, oldest first.
func (r *ReportModel) GetActionsSince(ctx context.Context, since time.Time) ([]*types.ModerationAction, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.ModerationAction, error) {
		var actions []*types.ModerationAction

		err := r.db.NewSelect().
			Model(&actions).
			Where("created_at >= ?", since).
			Order("id ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get actions: %w", err)
		}

		return actions, nil
	})
}
