package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robalyx/modreport/internal/export"
	"github.com/robalyx/modreport/internal/setup"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var (
	ErrInvalidHashType = errors.New("invalid hash type")
	ErrSaltRequired    = errors.New("salt is required")
	ErrInvalidSince    = errors.New("since must be a date in YYYY-MM-DD form")
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the audit log with pseudonymized user IDs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "exports",
				Usage:   "Base output directory for export files",
			},
			&cli.StringFlag{
				Name:  "since",
				Usage: "Only export reports created on or after this date (YYYY-MM-DD)",
			},
			&cli.StringSliceFlag{
				Name:  "format",
				Value: []string{string(export.FormatSQLite), string(export.FormatCSV)},
				Usage: "Formats to write (sqlite, csv)",
			},
			&cli.StringFlag{
				Name:    "salt",
				Aliases: []string{"s"},
				Usage:   "Salt for hashing IDs",
			},
			&cli.StringFlag{
				Name:    "hash-type",
				Aliases: []string{"t"},
				Value:   string(export.HashTypeArgon2id),
				Usage:   "Hash algorithm to use (argon2id or sha256)",
			},
			&cli.UintFlag{
				Name:    "iterations",
				Aliases: []string{"i"},
				Value:   3,
				Usage:   "Number of hash iterations",
			},
			&cli.UintFlag{
				Name:    "memory",
				Aliases: []string{"m"},
				Value:   64,
				Usage:   "Memory to use for Argon2id in MB",
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"c"},
				Value:   4,
				Usage:   "Number of concurrent hash operations",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			opts, err := parseExportOptions(
				c.String("salt"), c.String("hash-type"), c.String("since"), c.StringSlice("format"),
			)
			if err != nil {
				return err
			}

			hasher := &export.Hasher{
				Salt:        opts.salt,
				Type:        opts.hashType,
				Iterations:  uint32(c.Uint("iterations")), //nolint:gosec // flag values are small
				Memory:      uint32(c.Uint("memory")),     //nolint:gosec // flag values are small
				Concurrency: int(c.Int("concurrency")),
			}

			// Initialize application with required dependencies
			app, err := setup.InitializeApp(ctx, "export", c.String("log-dir"), true)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Cleanup(ctx)

			if app.DB == nil {
				return ErrDatabaseDisabled
			}

			// Create timestamped output directory
			timestamp := time.Now().UTC().Format("2006-01-02_150405")
			outDir := filepath.Join(c.String("output"), timestamp)
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			manifest, err := export.New(app.DB.Report(), outDir, hasher, opts.formats, app.Logger).Export(ctx, opts.since)
			if err != nil {
				return fmt.Errorf("failed to export data: %w", err)
			}

			app.Logger.Info("Export completed",
				zap.String("dir", outDir),
				zap.Int("reports", manifest.Reports),
				zap.Int("actions", manifest.Actions))

			return nil
		},
	}
}

type exportOptions struct {
	salt     string
	hashType export.HashType
	since    time.Time
	formats  []export.Format
}

// parseExportOptions validates the export flags.
func parseExportOptions(salt, hashType, since string, formats []string) (*exportOptions, error) {
	opts := &exportOptions{salt: salt}

	if salt == "" {
		return nil, ErrSaltRequired
	}

	switch export.HashType(hashType) {
	case export.HashTypeArgon2id, export.HashTypeSHA256:
		opts.hashType = export.HashType(hashType)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidHashType, hashType)
	}

	if since != "" {
		t, err := time.Parse(time.DateOnly, since)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSince, since)
		}

		opts.since = t
	}

	for _, f := range formats {
		switch export.Format(f) {
		case export.FormatSQLite, export.FormatCSV:
			opts.formats = append(opts.formats, export.Format(f))
		default:
			return nil, fmt.Errorf("%w: %s", export.ErrUnsupportedFormat, f)
		}
	}

	return opts, nil
}
