package main

import (
	"testing"
	"time"

	"github.com/robalyx/modreport/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExportOptions(t *testing.T) {
	t.Parallel()

	opts, err := parseExportOptions("pepper", "sha256", "2025-06-01", []string{"csv"})
	require.NoError(t, err)
	assert.Equal(t, export.HashTypeSHA256, opts.hashType)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), opts.since)
	assert.Equal(t, []export.Format{export.FormatCSV}, opts.formats)
}

func TestParseExportOptionsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		salt     string
		hashType string
		since    string
		formats  []string
		wantErr  error
	}{
		{name: "missing salt", hashType: "sha256", wantErr: ErrSaltRequired},
		{name: "bad hash type", salt: "x", hashType: "md5", wantErr: ErrInvalidHashType},
		{name: "bad date", salt: "x", hashType: "argon2id", since: "yesterday", wantErr: ErrInvalidSince},
		{name: "bad format", salt: "x", hashType: "argon2id", formats: []string{"xlsx"}, wantErr: export.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parseExportOptions(tt.salt, tt.hashType, tt.since, tt.formats)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
