package models

import "time"

// RunResult holds the outcome of a finalized backup run.
type RunResult struct {
	ArchivePath       string
	EntriesWritten    int
	FilesFailed       int
	PartialEntries    int // entries whose copy failed after they were created
	DirectoriesFailed int
	Duration          time.Duration
}
