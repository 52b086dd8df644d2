package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/robalyx/modreport/internal/export/types"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// FileName is the database written into the output directory.
const FileName = "audit.db"

const schema = `
CREATE TABLE reports (
	report_id TEXT PRIMARY KEY,
	guild_id TEXT NOT NULL,
	reporter_hash TEXT NOT NULL,
	reported_user_hash TEXT NOT NULL,
	reason TEXT NOT NULL,
	category TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TEXT NOT NULL,
	resolved_at TEXT NOT NULL
);
CREATE TABLE actions (
	report_id TEXT NOT NULL,
	stage TEXT NOT NULL,
	action TEXT NOT NULL,
	moderator_hash TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX idx_actions_report ON actions (report_id);
`

// Exporter writes the audit history to a SQLite database.
type Exporter struct {
	outDir string
}

// New creates a new SQLite exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export replaces the output database with the given records.
func (e *Exporter) Export(reports []*types.ReportRecord, actions []*types.ActionRecord) (err error) {
	path := filepath.Join(e.outDir, FileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing file %s: %w", FileName, err)
	}

	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate|sqlite.OpenReadWrite)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer conn.Close()

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	// One transaction for the whole export
	defer sqlitex.Save(conn)(&err)

	for _, r := range reports {
		err := sqlitex.Execute(conn,
			`INSERT INTO reports (report_id, guild_id, reporter_hash, reported_user_hash,
				reason, category, status, created_at, resolved_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{
					r.ReportID, r.GuildID, r.ReporterHash, r.ReportedUserHash,
					r.Reason, r.Category, r.Status, r.CreatedAt, r.ResolvedAt,
				},
			})
		if err != nil {
			return fmt.Errorf("failed to insert report: %w", err)
		}
	}

	for _, a := range actions {
		err := sqlitex.Execute(conn,
			`INSERT INTO actions (report_id, stage, action, moderator_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{a.ReportID, a.Stage, a.Action, a.ModeratorHash, a.CreatedAt},
			})
		if err != nil {
			return fmt.Errorf("failed to insert action: %w", err)
		}
	}

	return nil
}
