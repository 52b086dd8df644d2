package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robalyx/modreport/internal/export/types"
)

var (
	reportHeader = []string{ //nolint:gochecknoglobals // header row
		"report_id", "guild_id", "reporter_hash", "reported_user_hash",
		"reason", "category", "status", "created_at", "resolved_at",
	}
	actionHeader = []string{ //nolint:gochecknoglobals // header row
		"report_id", "stage", "action", "moderator_hash", "created_at",
	}
)

// Exporter writes the audit history to csv files.
type Exporter struct {
	outDir string
}

// New creates a new csv exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export writes reports.csv and actions.csv, replacing existing files.
func (e *Exporter) Export(reports []*types.ReportRecord, actions []*types.ActionRecord) error {
	reportRows := make([][]string, 0, len(reports))
	for _, r := range reports {
		reportRows = append(reportRows, []string{
			r.ReportID, r.GuildID, r.ReporterHash, r.ReportedUserHash,
			r.Reason, r.Category, r.Status, r.CreatedAt, r.ResolvedAt,
		})
	}

	if err := e.writeFile("reports.csv", reportHeader, reportRows); err != nil {
		return fmt.Errorf("failed to export reports: %w", err)
	}

	actionRows := make([][]string, 0, len(actions))
	for _, a := range actions {
		actionRows = append(actionRows, []string{a.ReportID, a.Stage, a.Action, a.ModeratorHash, a.CreatedAt})
	}

	if err := e.writeFile("actions.csv", actionHeader, actionRows); err != nil {
		return fmt.Errorf("failed to export actions: %w", err)
	}

	return nil
}

// writeFile writes a header and rows to a csv file.
func (e *Exporter) writeFile(filename string, header []string, rows [][]string) error {
	file, err := os.Create(filepath.Join(e.outDir, filename))
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	return nil
}
