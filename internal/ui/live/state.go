package live

import (
	"time"

	"github.com/oscarbenjamin/txt2bb/internal/runner"
)

// FileRow holds UI state for a single input file.
type FileRow struct {
	Index      int
	Path       string
	Status     runner.FileEventType
	Blocks     int
	Questions  int
	Artifacts  []runner.Artifact
	ErrorKind  string
	Error      string
	WallTime   time.Duration
	StartedAt  time.Time
	FinishedAt time.Time
}

// StatusCounts aggregates counts by status bucket.
type StatusCounts struct {
	Queued  int
	Active  int
	Parsed  int
	Written int
	Failed  int
	Skipped int
}

// State captures the live UI state for a conversion run.
type State struct {
	RunID      string
	StartedAt  time.Time
	LastEvent  string
	Rows       []FileRow
	Counts     StatusCounts
	Finished   bool
	Randomised bool
	Seed       uint64
}
