// Package models contains the data structures used throughout gozip-backup.
package models

// BackupConfig holds the resolved source and target directories for a run.
type BackupConfig struct {
	Paths   PathSettings
	Logging LoggingSettings
}

// PathSettings lists the directories to back up and where the archive goes.
type PathSettings struct {
	Sources []string // may be empty; missing entries are reported per run
	Target  string
}

// LoggingSettings controls the companion log file written by the CLI.
type LoggingSettings struct {
	Dir string // directory for log_<timestamp>.txt, default "logs"
}
