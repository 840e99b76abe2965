package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const (
	indexWidth     = 4
	statusWidth    = 30
	questionsWidth = 16
	timeWidth      = 10
	minFileWidth   = 16
	defaultWidth   = 120
)

// defaultColumns returns the columns for a standard terminal.
func defaultColumns() []table.Column {
	return columnsForWidth(defaultWidth)
}

// columnsForWidth splits the terminal width between the columns. The file
// and output columns share whatever the fixed columns leave.
func columnsForWidth(width int) []table.Column {
	fixed := indexWidth + statusWidth + questionsWidth + timeWidth
	flexible := max(width-fixed-10, 2*minFileWidth)
	fileWidth := flexible / 2
	return []table.Column{
		{Title: "#", Width: indexWidth},
		{Title: "File", Width: fileWidth},
		{Title: "Status", Width: statusWidth},
		{Title: "Questions", Width: questionsWidth},
		{Title: "Time", Width: timeWidth},
		{Title: "Output", Width: flexible - fileWidth},
	}
}

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	styles := table.DefaultStyles()
	if noColor {
		styles.Selected = lipgloss.NewStyle()
		return styles
	}
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	styles.Selected = lipgloss.NewStyle()
	return styles
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, now time.Time, fileWidth int, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		rows = append(rows, table.Row{
			formatIndex(row.Index),
			formatPath(row.Path, fileWidth),
			formatStatus(row, noColor),
			formatQuestions(row),
			formatRowDuration(row, now),
			formatArtifacts(row),
		})
	}
	return rows
}
