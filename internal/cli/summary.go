package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/oscarbenjamin/txt2bb/internal/runner"
)

var statusColors = map[runner.FileStatus]lipgloss.Color{
	runner.StatusConverted: lipgloss.Color("42"),
	runner.StatusValid:     lipgloss.Color("42"),
	runner.StatusFailed:    lipgloss.Color("196"),
	runner.StatusSkipped:   lipgloss.Color("246"),
}

// printRunSummary writes one line per file followed by run totals.
func printRunSummary(w io.Writer, results runner.Results, styled bool) {
	for _, file := range results.Files {
		fmt.Fprintf(w, "%s %s\n", statusLabel(file.Status, styled), describeFile(file))
	}
	summary := results.Summary
	line := fmt.Sprintf("%d files: %d converted, %d failed, %d skipped; %d questions, %d artifacts",
		summary.FilesTotal, summary.FilesConverted, summary.FilesFailed, summary.FilesSkipped,
		summary.QuestionsTotal, summary.Artifacts)
	if summary.FilesValid > 0 {
		line = fmt.Sprintf("%d files: %d valid, %d failed; %d questions",
			summary.FilesTotal, summary.FilesValid, summary.FilesFailed, summary.QuestionsTotal)
	}
	fmt.Fprintln(w, line)
	if results.Randomised {
		fmt.Fprintf(w, "Seed: %d\n", results.Seed)
	}
}

func statusLabel(status runner.FileStatus, styled bool) string {
	label := fmt.Sprintf("%-9s", status)
	if !styled {
		return label
	}
	return lipgloss.NewStyle().Foreground(statusColors[status]).Bold(true).Render(label)
}

// describeFile renders the detail part of a summary line.
func describeFile(file runner.FileResult) string {
	switch file.Status {
	case runner.StatusFailed:
		return file.Path + ": " + file.Error
	case runner.StatusConverted:
		names := make([]string, 0, len(file.Artifacts))
		for _, artifact := range file.Artifacts {
			if artifact.Path == runner.StdoutPath {
				names = append(names, "stdout")
				continue
			}
			names = append(names, artifact.Path)
		}
		return fmt.Sprintf("%s -> %s", file.Path, strings.Join(names, ", "))
	case runner.StatusValid:
		return fmt.Sprintf("%s: %d blocks, %d questions%s", file.Path, file.Stats.Blocks, file.Stats.Questions, formatTypes(file.Types))
	default:
		return file.Path
	}
}

// formatTypes lists question counts per type tag in tag order.
func formatTypes(types map[string]int) string {
	if len(types) == 0 {
		return ""
	}
	tags := make([]string, 0, len(types))
	for tag := range types {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		parts = append(parts, fmt.Sprintf("%s %d", tag, types[tag]))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
