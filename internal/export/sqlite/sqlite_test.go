package sqlite_test

import (
	"path/filepath"
	"testing"

	exportSQLite "github.com/robalyx/modreport/internal/export/sqlite"
	"github.com/robalyx/modreport/internal/export/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func TestExporterExport(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	reports := []*types.ReportRecord{
		{
			ReportID:         "a",
			GuildID:          "100",
			ReporterHash:     "r1",
			ReportedUserHash: "u1",
			Reason:           "spam",
			Category:         "Scam links",
			Status:           "resolved",
			CreatedAt:        "2025-06-01T00:00:00Z",
			ResolvedAt:       "2025-06-01T01:00:00Z",
		},
		{
			ReportID:         "b",
			GuildID:          "100",
			ReporterHash:     "r2",
			ReportedUserHash: "u1",
			Reason:           "harassment",
			Category:         "Threats",
			Status:           "open",
			CreatedAt:        "2025-06-02T00:00:00Z",
		},
	}
	actions := []*types.ActionRecord{
		{ReportID: "a", Stage: "USER_REVIEW", Action: "warn", ModeratorHash: "m1", CreatedAt: "2025-06-01T00:30:00Z"},
		{ReportID: "a", Stage: "POST_REVIEW", Action: "delete", ModeratorHash: "m1", CreatedAt: "2025-06-01T01:00:00Z"},
	}

	exporter := exportSQLite.New(outDir)
	require.NoError(t, exporter.Export(reports, actions))

	// Exporting again replaces the file instead of failing on existing tables
	require.NoError(t, exporter.Export(reports, actions))

	conn, err := sqlite.OpenConn(filepath.Join(outDir, exportSQLite.FileName), sqlite.OpenReadOnly)
	require.NoError(t, err)
	defer conn.Close()

	var statuses []string
	err = sqlitex.ExecuteTransient(conn, "SELECT status FROM reports ORDER BY report_id", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			statuses = append(statuses, stmt.ColumnText(0))
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"resolved", "open"}, statuses)

	var got []string
	err = sqlitex.ExecuteTransient(conn, "SELECT action FROM actions WHERE report_id = ? ORDER BY created_at", &sqlitex.ExecOptions{
		Args: []any{"a"},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			got = append(got, stmt.ColumnText(0))
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"warn", "delete"}, got)
}
