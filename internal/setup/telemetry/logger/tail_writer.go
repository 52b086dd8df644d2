package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TailWriter appends to a log file and periodically rewrites it so that only
// the newest maxLines lines survive. The file grows to at most twice maxLines
// between rewrites.
type TailWriter struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	maxLines  int
	tail      []string // Newest non-empty lines, oldest first
	fileLines int      // Lines written to the file since it was last rewritten
}

// NewTailWriter opens path for appending. A maxLines of zero or less never rewrites.
func NewTailWriter(path string, maxLines int) (*TailWriter, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}

	return &TailWriter{
		path:     path,
		file:     file,
		maxLines: maxLines,
	}, nil
}

// Write implements io.Writer.
func (w *TailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil || w.maxLines <= 0 {
		return n, err
	}

	for line := range strings.SplitSeq(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}

		w.tail = append(w.tail, line)
		if len(w.tail) > w.maxLines {
			w.tail = w.tail[len(w.tail)-w.maxLines:]
		}

		w.fileLines++
	}

	if w.fileLines >= w.maxLines*2 {
		if err := w.rewrite(); err != nil {
			return n, fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	return n, nil
}

// Sync flushes the file to disk.
func (w *TailWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.file.Sync()
}

// Close closes the underlying file.
func (w *TailWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.file.Close()
}

// rewrite replaces the file with the retained tail and reopens it for appending.
func (w *TailWriter) rewrite() error {
	temp, err := os.CreateTemp(filepath.Dir(w.path), "temp-log-")
	if err != nil {
		return err
	}

	tempPath := temp.Name()

	content := strings.Join(w.tail, "\n") + "\n"
	if _, err := temp.WriteString(content); err != nil {
		temp.Close()
		os.Remove(tempPath)

		return err
	}

	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	w.file.Close()

	// Windows cannot rename over an open or existing file
	os.Remove(w.path)

	if err := os.Rename(tempPath, w.path); err != nil {
		return err
	}

	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	w.file = file
	w.fileLines = len(w.tail)

	return nil
}
