package telemetry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/robalyx/modreport/internal/setup/config"
	"github.com/robalyx/modreport/internal/setup/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerGetLoggers(t *testing.T) {
	t.Parallel()

	logDir := t.TempDir()
	manager := telemetry.NewManager("bot", logDir, &config.Debug{
		LogLevel:      "info",
		MaxLogsToKeep: 5,
		MaxLogLines:   100,
	}, false)

	logger, dbLogger, err := manager.GetLoggers()
	require.NoError(t, err)

	logger.Info("hello from the bot")
	dbLogger.Info("hello from the database")
	require.NoError(t, logger.Sync())
	require.NoError(t, dbLogger.Sync())

	sessionDir := manager.GetCurrentSessionDir()
	assert.Equal(t, logDir, filepath.Dir(sessionDir))
	assert.NotEmpty(t, manager.GetInstanceID())

	content, err := os.ReadFile(filepath.Join(sessionDir, "bot.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello from the bot")
	assert.Contains(t, string(content), manager.GetInstanceID())

	content, err = os.ReadFile(filepath.Join(sessionDir, "database.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello from the database")
}

func TestManagerRotatesOldSessions(t *testing.T) {
	t.Parallel()

	logDir := t.TempDir()
	for _, name := range []string{"2024-01-01_00-00-00", "2024-01-02_00-00-00", "2024-01-03_00-00-00"} {
		require.NoError(t, os.MkdirAll(filepath.Join(logDir, name), os.ModePerm))
	}

	manager := telemetry.NewManager("bot", logDir, &config.Debug{
		LogLevel:      "info",
		MaxLogsToKeep: 2,
		MaxLogLines:   100,
	}, false)

	_, _, err := manager.GetLoggers()
	require.NoError(t, err)

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	assert.Len(t, names, 2)
	assert.Contains(t, names, "2024-01-03_00-00-00")
	assert.Contains(t, names, filepath.Base(manager.GetCurrentSessionDir()))
}

func TestManagerInvalidLevel(t *testing.T) {
	t.Parallel()

	manager := telemetry.NewManager("bot", t.TempDir(), &config.Debug{
		LogLevel:      "loud",
		MaxLogsToKeep: 2,
		MaxLogLines:   100,
	}, false)

	_, _, err := manager.GetLoggers()
	require.Error(t, err)
}
