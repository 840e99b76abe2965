package variant

import "strings"

const (
	groupOpen  = "%{"
	groupClose = "}%"
)

// segment is either literal text or a variant group.
type segment struct {
	literal      string
	alternatives []string
	group        bool
}

// Template is a field value split into literal text and variant groups.
type Template struct {
	segments []segment
}

// ParseTemplate tokenizes text into literal segments and %{a, b}% groups.
// Inside a group "\," is a literal comma and "," separates alternatives;
// alternatives are trimmed. An unterminated "%{" is kept as literal text.
func ParseTemplate(text string) Template {
	var tpl Template
	rest := text
	for {
		start := strings.Index(rest, groupOpen)
		if start < 0 {
			tpl.appendLiteral(rest)
			return tpl
		}
		alternatives, consumed, ok := scanGroup(rest[start+len(groupOpen):])
		if !ok {
			tpl.appendLiteral(rest)
			return tpl
		}
		tpl.appendLiteral(rest[:start])
		tpl.segments = append(tpl.segments, segment{alternatives: alternatives, group: true})
		rest = rest[start+len(groupOpen)+consumed:]
	}
}

// scanGroup reads alternatives up to and including the closing "}%". It
// returns the number of bytes consumed.
func scanGroup(body string) ([]string, int, bool) {
	var alternatives []string
	var current strings.Builder
	for i := 0; i < len(body); i++ {
		switch {
		case body[i] == '\\' && i+1 < len(body) && body[i+1] == ',':
			current.WriteByte(',')
			i++
		case strings.HasPrefix(body[i:], groupClose):
			alternatives = append(alternatives, strings.TrimSpace(current.String()))
			return alternatives, i + len(groupClose), true
		case body[i] == ',':
			alternatives = append(alternatives, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(body[i])
		}
	}
	return nil, 0, false
}

func (t *Template) appendLiteral(text string) {
	if text == "" {
		return
	}
	if n := len(t.segments); n > 0 && !t.segments[n-1].group {
		t.segments[n-1].literal += text
		return
	}
	t.segments = append(t.segments, segment{literal: text})
}

// Groups returns the alternative lists of every group, in order.
func (t Template) Groups() [][]string {
	var groups [][]string
	for _, seg := range t.segments {
		if seg.group {
			groups = append(groups, seg.alternatives)
		}
	}
	return groups
}

// HasGroups reports whether the template contains a variant group.
func (t Template) HasGroups() bool {
	for _, seg := range t.segments {
		if seg.group {
			return true
		}
	}
	return false
}

// Render substitutes the index-th alternative of every group. Groups
// shorter than index+1 render as empty text; callers check cardinality first.
func (t Template) Render(index int) string {
	var b strings.Builder
	for _, seg := range t.segments {
		if !seg.group {
			b.WriteString(seg.literal)
			continue
		}
		if index < len(seg.alternatives) {
			b.WriteString(seg.alternatives[index])
		}
	}
	return b.String()
}
