package parser

import (
	"regexp"
	"strings"
)

// Line is a logical line: one or more physical lines joined together.
// Forced line breaks inside a field value are kept as "\n".
type Line struct {
	// Number is the 1-based physical line the logical line starts on.
	Number int
	Text   string
}

const (
	markerPrefix  = "-------"
	commentPrefix = "#"
	forcedBreak   = ">"
)

// fieldOpener matches "key:" with a snake_case key or a %{...}% label group.
var fieldOpener = regexp.MustCompile(`^(?:[a-z][a-z0-9_]*|%\{.*?\}%)\s*:`)

type joinMode int

const (
	joinNone joinMode = iota
	// joinSpace continues onto the next physical line with one space.
	joinSpace
	// joinRaw continues with no separator, used after a LaTeX "\\" row break.
	joinRaw
)

// normalizer holds the state of a single left-to-right pass.
type normalizer struct {
	out     []Line
	current *Line
	inField bool
	pending joinMode
}

// Normalize joins continued physical lines into logical lines. It never
// fails: malformed input stays literal and is reported by later stages.
func Normalize(content string) []Line {
	n := &normalizer{}
	physical := strings.Split(content, "\n")
	for i, raw := range physical {
		n.consume(i+1, strings.ReplaceAll(strings.TrimRight(raw, "\r"), "\t", " "))
	}
	n.flush()
	return n.out
}

func (n *normalizer) consume(number int, text string) {
	trimmed := strings.TrimSpace(text)
	forced := strings.HasPrefix(trimmed, forcedBreak) && n.current != nil && n.inField

	// A forced break ends a pending continuation instead of joining it.
	if n.pending != joinNone && n.current != nil && !forced {
		mode := n.pending
		n.pending = joinNone
		switch {
		case trimmed == "":
		case mode == joinRaw:
			n.current.Text += trimmed
		case n.current.Text == "":
			n.current.Text = trimmed
		default:
			n.current.Text += " " + trimmed
		}
		n.checkContinuation()
		return
	}

	switch {
	case trimmed == "":
		n.flush()
		n.inField = false
	case strings.HasPrefix(trimmed, commentPrefix):
		n.flush()
		n.inField = false
		n.out = append(n.out, Line{Number: number, Text: trimmed})
	case strings.HasPrefix(trimmed, markerPrefix):
		n.flush()
		n.inField = false
		n.out = append(n.out, Line{Number: number, Text: trimmed})
	case forced:
		n.pending = joinNone
		n.current.Text += "\n" + strings.TrimSpace(strings.TrimPrefix(trimmed, forcedBreak))
		n.checkContinuation()
	case fieldOpener.MatchString(trimmed):
		n.flush()
		n.current = &Line{Number: number, Text: trimmed}
		n.inField = true
		n.checkContinuation()
	case n.current != nil && n.inField:
		n.current.Text += " " + trimmed
		n.checkContinuation()
	default:
		n.flush()
		n.current = &Line{Number: number, Text: trimmed}
		n.inField = false
		n.checkContinuation()
	}
}

// checkContinuation strips a trailing continuation marker from the current
// line and records how the next physical line joins onto it.
func (n *normalizer) checkContinuation() {
	text := strings.TrimRight(n.current.Text, " ")
	slashes := len(text) - len(strings.TrimRight(text, `\`))
	switch {
	case slashes == 0:
		n.current.Text = text
	case slashes%2 == 1:
		n.current.Text = strings.TrimRight(text[:len(text)-1], " ")
		n.pending = joinSpace
	default:
		n.current.Text = text
		n.pending = joinRaw
	}
}

func (n *normalizer) flush() {
	if n.current != nil {
		n.out = append(n.out, *n.current)
		n.current = nil
	}
	n.pending = joinNone
}
