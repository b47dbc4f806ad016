package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// logFileName returns the companion log file name for a run.
func logFileName(timestamp string) string {
	return fmt.Sprintf("log_%s.txt", timestamp)
}

// openLogFile creates dir if needed and opens <dir>/log_<timestamp>.txt for appending.
func openLogFile(fs afero.Fs, dir, timestamp string) (afero.File, error) {
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, logFileName(timestamp))
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return f, nil
}

// attachLogFile opens the run's log file and writes the lines buffered in
// pending into it first.
func attachLogFile(fs afero.Fs, dir, timestamp string, pending *bytes.Buffer) (afero.File, error) {
	f, err := openLogFile(fs, dir, timestamp)
	if err != nil {
		return nil, err
	}

	if _, err := pending.WriteTo(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to flush buffered log lines: %w", err)
	}

	return f, nil
}
