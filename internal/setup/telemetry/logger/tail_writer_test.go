package logger_test

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/robalyx/modreport/internal/setup/telemetry/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTailWriterKeepsNewestLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bot.log")
	w, err := logger.NewTailWriter(path, 3)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	// The file is rewritten once twice the limit has been written
	for i := range 6 {
		_, err := w.Write([]byte("line " + strconv.Itoa(i) + "\n"))
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"line 3", "line 4", "line 5"}, readLines(t, path))

	// Later writes append to the rewritten file
	_, err = w.Write([]byte("line 6\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"line 3", "line 4", "line 5", "line 6"}, readLines(t, path))
}

func TestTailWriterBelowLimit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bot.log")
	w, err := logger.NewTailWriter(path, 10)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	_, err = w.Write([]byte("first\nsecond\n\nthird\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "", "third"}, readLines(t, path))
}

func TestTailWriterUnlimited(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bot.log")
	w, err := logger.NewTailWriter(path, 0)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	for i := range 20 {
		_, err := w.Write([]byte(strconv.Itoa(i) + "\n"))
		require.NoError(t, err)
	}

	assert.Len(t, readLines(t, path), 20)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	return strings.Split(strings.TrimRight(string(content), "\n"), "\n")
}
