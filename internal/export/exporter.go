package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	dbTypes "github.com/robalyx/modreport/internal/database/types"
	"github.com/robalyx/modreport/internal/export/csv"
	"github.com/robalyx/modreport/internal/export/sqlite"
	"github.com/robalyx/modreport/internal/export/types"
	"go.uber.org/zap"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format represents a supported export format.
type Format string

const (
	FormatSQLite Format = "sqlite"
	FormatCSV    Format = "csv"
)

// EngineVersion changes whenever the exported layout changes.
const EngineVersion = "1.0.0"

// ManifestFile describes an export and is written next to the data files.
const ManifestFile = "export_manifest.json"

// Source reads the audit history.
type Source interface {
	GetReportsSince(ctx context.Context, since time.Time) ([]*dbTypes.Report, error)
	GetActionsSince(ctx context.Context, since time.Time) ([]*dbTypes.ModerationAction, error)
}

// Manifest records how an export was produced.
type Manifest struct {
	EngineVersion string    `json:"engineVersion"`
	HashType      HashType  `json:"hashType"`
	Iterations    uint32    `json:"iterations"`
	Memory        uint32    `json:"memory,omitempty"`
	Since         time.Time `json:"since"`
	ExportedAt    time.Time `json:"exportedAt"`
	Reports       int       `json:"reports"`
	Actions       int       `json:"actions"`
	Formats       []Format  `json:"formats"`
}

// Exporter writes the audit history with pseudonymized user IDs.
type Exporter struct {
	source  Source
	outDir  string
	hasher  *Hasher
	formats []Format
	logger  *zap.Logger
}

// New creates a new exporter instance.
func New(source Source, outDir string, hasher *Hasher, formats []Format, logger *zap.Logger) *Exporter {
	return &Exporter{
		source:  source,
		outDir:  outDir,
		hasher:  hasher,
		formats: formats,
		logger:  logger.Named("export"),
	}
}

// Export writes every report and action created at or after since.
func (e *Exporter) Export(ctx context.Context, since time.Time) (*Manifest, error) {
	// Validate formats before touching the output directory
	for _, format := range e.formats {
		if format != FormatSQLite && format != FormatCSV {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
		}
	}

	if err := os.MkdirAll(e.outDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	reports, err := e.source.GetReportsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	actions, err := e.source.GetActionsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Fetched audit history",
		zap.Int("reports", len(reports)),
		zap.Int("actions", len(actions)))

	reportRecords, actionRecords := e.toRecords(reports, actions)

	for _, format := range e.formats {
		var exporter interface {
			Export(reports []*types.ReportRecord, actions []*types.ActionRecord) error
		}

		switch format {
		case FormatSQLite:
			exporter = sqlite.New(e.outDir)
		case FormatCSV:
			exporter = csv.New(e.outDir)
		}

		if err := exporter.Export(reportRecords, actionRecords); err != nil {
			return nil, fmt.Errorf("failed to export %s format: %w", format, err)
		}

		e.logger.Info("Wrote export", zap.String("format", string(format)))
	}

	manifest := &Manifest{
		EngineVersion: EngineVersion,
		HashType:      e.hasher.Type,
		Iterations:    e.hasher.Iterations,
		Memory:        e.hasher.Memory,
		Since:         since,
		ExportedAt:    time.Now().UTC(),
		Reports:       len(reportRecords),
		Actions:       len(actionRecords),
		Formats:       e.formats,
	}

	data, err := sonic.ConfigStd.MarshalIndent(manifest, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export manifest: %w", err)
	}

	if err := os.WriteFile(filepath.Join(e.outDir, ManifestFile), data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write export manifest: %w", err)
	}

	return manifest, nil
}

// toRecords converts rows to export records, hashing every user ID once.
func (e *Exporter) toRecords(
	reports []*dbTypes.Report, actions []*dbTypes.ModerationAction,
) ([]*types.ReportRecord, []*types.ActionRecord) {
	ids := make([]uint64, 0, len(reports)*2+len(actions))
	for _, r := range reports {
		ids = append(ids, r.ReporterID, r.ReportedUserID)
	}
	for _, a := range actions {
		ids = append(ids, a.ModeratorID)
	}

	hashes := e.hasher.HashAll(ids)

	reportRecords := make([]*types.ReportRecord, len(reports))
	for i, r := range reports {
		record := &types.ReportRecord{
			ReportID:         r.ID.String(),
			GuildID:          strconv.FormatUint(r.GuildID, 10),
			ReporterHash:     hashes[r.ReporterID],
			ReportedUserHash: hashes[r.ReportedUserID],
			Reason:           r.Reason,
			Category:         r.Category,
			Status:           string(r.Status),
			CreatedAt:        r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if !r.ResolvedAt.IsZero() {
			record.ResolvedAt = r.ResolvedAt.UTC().Format(time.RFC3339)
		}
		reportRecords[i] = record
	}

	actionRecords := make([]*types.ActionRecord, len(actions))
	for i, a := range actions {
		actionRecords[i] = &types.ActionRecord{
			ReportID:      a.ReportID.String(),
			Stage:         a.Stage,
			Action:        a.Action,
			ModeratorHash: hashes[a.ModeratorID],
			CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	return reportRecords, actionRecords
}
