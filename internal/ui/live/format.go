package live

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/oscarbenjamin/txt2bb/internal/runner"
)

// formatIndex formats a file index.
func formatIndex(index int) string {
	return pad2(index + 1)
}

// pad2 left-pads a number to two digits when needed.
func pad2(value int) string {
	if value >= 10 {
		return fmtInt(value)
	}
	return "0" + fmtInt(value)
}

// fmtInt converts an int to string.
func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// formatPath shortens a path for display, keeping the file name.
func formatPath(path string, limit int) string {
	if limit <= 3 || len(path) <= limit {
		return path
	}
	base := filepath.Base(path)
	if len(base) >= limit-3 {
		return base[:limit-3] + "..."
	}
	return "..." + path[len(path)-(limit-3):]
}

// formatStatus renders a status string for a row.
func formatStatus(row FileRow, noColor bool) string {
	label := string(row.Status)
	if row.Status == runner.FileFailed && row.ErrorKind != "" {
		label = "failed: " + row.ErrorKind
	}
	return stylizeStatus(label, row.Status, noColor)
}

// formatQuestions renders the question count for a row.
func formatQuestions(row FileRow) string {
	if row.Questions <= 0 {
		return ""
	}
	if row.Blocks > 0 && row.Blocks != row.Questions {
		return fmtInt(row.Questions) + " (" + fmtInt(row.Blocks) + " blocks)"
	}
	return fmtInt(row.Questions)
}

// formatRowDuration returns elapsed or total time for a row.
func formatRowDuration(row FileRow, now time.Time) string {
	if row.WallTime > 0 && isTerminalStatus(row.Status) {
		return formatDuration(row.WallTime)
	}
	if !row.StartedAt.IsZero() && row.FinishedAt.IsZero() {
		return formatDuration(now.Sub(row.StartedAt))
	}
	return ""
}

// formatArtifacts lists written artifact names.
func formatArtifacts(row FileRow) string {
	if row.Status == runner.FileFailed {
		return row.Error
	}
	names := make([]string, 0, len(row.Artifacts))
	for _, artifact := range row.Artifacts {
		if artifact.Path == runner.StdoutPath {
			names = append(names, "stdout")
			continue
		}
		names = append(names, filepath.Base(artifact.Path))
	}
	return strings.Join(names, " ")
}

// stylizeStatus applies status coloring when enabled.
func stylizeStatus(text string, status runner.FileEventType, noColor bool) string {
	if noColor {
		return text
	}
	return statusStyle(status).Render(text)
}

// statusStyle selects a style for a given status.
func statusStyle(status runner.FileEventType) lipgloss.Style {
	color := lipgloss.Color("244")
	switch status {
	case runner.FileWritten:
		color = lipgloss.Color("42")
	case runner.FileParsed:
		color = lipgloss.Color("39")
	case runner.FileFailed:
		color = lipgloss.Color("196")
	case runner.FileParsing, runner.FileRendering:
		color = lipgloss.Color("33")
	case runner.FileQueued, runner.FileSkipped:
		color = lipgloss.Color("246")
	}
	return lipgloss.NewStyle().Foreground(color)
}
