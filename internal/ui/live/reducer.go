package live

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/oscarbenjamin/txt2bb/internal/runner"
)

// StartRun resets the state for a new run over files.
func StartRun(state State, runID string, files []string, now time.Time) State {
	state.RunID = runID
	if state.StartedAt.IsZero() {
		state.StartedAt = now
	}
	state.Rows = make([]FileRow, len(files))
	for i, path := range files {
		state.Rows[i] = FileRow{Index: i, Path: path, Status: runner.FileQueued}
	}
	state.Counts = recount(state.Rows)
	state.LastEvent = ""
	state.Finished = false
	return state
}

// Reduce applies a file event to the UI state.
func Reduce(state State, event runner.FileEvent) State {
	state = ensureRow(state, event)
	state = applyFileEvent(state, event)
	state.Counts = recount(state.Rows)
	var row FileRow
	if event.Index >= 0 && event.Index < len(state.Rows) {
		row = state.Rows[event.Index]
	}
	if message := formatLastEvent(row, event); message != "" {
		state.LastEvent = message
	}
	return state
}

// EndRun records the final run outcome.
func EndRun(state State, results runner.Results) State {
	state.Finished = true
	state.Randomised = results.Randomised
	state.Seed = results.Seed
	summary := results.Summary
	state.LastEvent = fmt.Sprintf("finished: %d converted, %d failed, %d skipped", summary.FilesConverted, summary.FilesFailed, summary.FilesSkipped)
	return state
}

// ensureRow grows the state rows to include the target index.
func ensureRow(state State, event runner.FileEvent) State {
	if event.Index < 0 || event.Index < len(state.Rows) {
		return state
	}
	rows := make([]FileRow, event.Index+1)
	copy(rows, state.Rows)
	for i := len(state.Rows); i < len(rows); i++ {
		rows[i] = FileRow{Index: i, Status: runner.FileQueued}
	}
	state.Rows = rows
	return state
}

// applyFileEvent updates a row with the given event.
func applyFileEvent(state State, event runner.FileEvent) State {
	if event.Index < 0 || event.Index >= len(state.Rows) {
		return state
	}
	row := state.Rows[event.Index]
	if row.Path == "" {
		row.Path = event.Path
	}
	row.Status = event.Type
	if event.Type == runner.FileParsing && row.StartedAt.IsZero() {
		row.StartedAt = event.EmittedAt
	}
	if event.Blocks > 0 {
		row.Blocks = event.Blocks
	}
	if event.Questions > 0 {
		row.Questions = event.Questions
	}
	if event.WallTime > 0 {
		row.WallTime = event.WallTime
	}
	if isTerminalStatus(event.Type) {
		if !event.EmittedAt.IsZero() {
			row.FinishedAt = event.EmittedAt
		}
		row.Artifacts = event.Artifacts
		row.ErrorKind = event.ErrorKind
		row.Error = event.Error
	}
	state.Rows[event.Index] = row
	return state
}

// isTerminalStatus reports whether a status is final.
func isTerminalStatus(status runner.FileEventType) bool {
	switch status {
	case runner.FileWritten, runner.FileFailed, runner.FileSkipped:
		return true
	default:
		return false
	}
}

// recount recomputes status counts for the current rows.
func recount(rows []FileRow) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case runner.FileQueued:
			counts.Queued++
		case runner.FileParsing, runner.FileRendering:
			counts.Active++
		case runner.FileParsed:
			counts.Parsed++
		case runner.FileWritten:
			counts.Written++
		case runner.FileFailed:
			counts.Failed++
		case runner.FileSkipped:
			counts.Skipped++
		}
	}
	return counts
}

// formatLastEvent creates a short footer message for the event. Counts
// come from the reduced row since later events do not repeat them.
func formatLastEvent(row FileRow, event runner.FileEvent) string {
	name := filepath.Base(event.Path)
	switch event.Type {
	case runner.FileFailed:
		if event.ErrorKind != "" {
			return fmt.Sprintf("%s %s: %s", name, event.ErrorKind, event.Error)
		}
		return fmt.Sprintf("%s failed: %s", name, event.Error)
	case runner.FileWritten:
		return fmt.Sprintf("%s written (%d questions, %s)", name, row.Questions, formatDuration(row.WallTime))
	case runner.FileSkipped:
		return name + " skipped"
	}
	return ""
}

// formatDuration renders a rounded duration for display.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(time.Millisecond).String()
}
