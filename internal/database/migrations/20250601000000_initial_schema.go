package migrations

import (
	"context"
	"fmt"

	"github.com/robalyx/modreport/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.Report)(nil),
			(*types.ModerationAction)(nil),
		}

		for _, model := range models {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create table: %w", err)
			}
		}

		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports (created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_reports_reported_user ON reports (reported_user_id, created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_reports_open ON reports (guild_id) WHERE status = 'open'`,
			`CREATE INDEX IF NOT EXISTS idx_moderation_actions_report ON moderation_actions (report_id)`,
			`CREATE INDEX IF NOT EXISTS idx_moderation_actions_created_at ON moderation_actions (created_at)`,
		}

		for _, index := range indexes {
			if _, err := db.ExecContext(ctx, index); err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		tables := []any{
			(*types.ModerationAction)(nil),
			(*types.Report)(nil),
		}

		for _, table := range tables {
			if _, err := db.NewDropTable().Model(table).IfExists().Cascade().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop table: %w", err)
			}
		}

		return nil
	})
}
