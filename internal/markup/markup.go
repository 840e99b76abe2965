// Package markup scans the inline markup shared by every renderer: math
// spans, image markers and forced line breaks.
package markup

import "strings"

const (
	imageOpen  = "@{"
	imageClose = "}@"
)

// LineBreak is the in-value representation of a forced line break.
const LineBreak = "\n"

// Images returns the file names of every @{name}@ marker in text, in order.
func Images(text string) []string {
	var names []string
	ReplaceImages(text, func(name string) string {
		names = append(names, name)
		return ""
	})
	return names
}

// ReplaceImages substitutes every @{name}@ marker with replace(name).
// An unterminated marker is left as is.
func ReplaceImages(text string, replace func(name string) string) string {
	var b strings.Builder
	rest := text
	for {
		start := strings.Index(rest, imageOpen)
		if start < 0 {
			b.WriteString(rest)
			return b.String()
		}
		end := strings.Index(rest[start+len(imageOpen):], imageClose)
		if end < 0 {
			b.WriteString(rest)
			return b.String()
		}
		name := strings.TrimSpace(rest[start+len(imageOpen) : start+len(imageOpen)+end])
		b.WriteString(rest[:start])
		b.WriteString(replace(name))
		rest = rest[start+len(imageOpen)+end+len(imageClose):]
	}
}

// Span is a math region found by ReplaceMath.
type Span struct {
	Body    string
	Display bool
}

// ReplaceMath substitutes every $..$ and $$..$$ span with replace(span).
// "\$" is a literal dollar and an unterminated span is left as text.
func ReplaceMath(text string, replace func(Span) string) string {
	var b strings.Builder
	for i := 0; i < len(text); {
		switch {
		case text[i] == '\\' && i+1 < len(text) && text[i+1] == '$':
			b.WriteString(`\$`)
			i += 2
		case strings.HasPrefix(text[i:], "$$"):
			end := indexUnescaped(text[i+2:], "$$")
			if end < 0 {
				b.WriteString(text[i:])
				return b.String()
			}
			b.WriteString(replace(Span{Body: text[i+2 : i+2+end], Display: true}))
			i += 2 + end + 2
		case text[i] == '$':
			end := indexUnescaped(text[i+1:], "$")
			if end < 0 {
				b.WriteString(text[i:])
				return b.String()
			}
			b.WriteString(replace(Span{Body: text[i+1 : i+1+end]}))
			i += 1 + end + 1
		default:
			b.WriteByte(text[i])
			i++
		}
	}
	return b.String()
}

// indexUnescaped finds sep in text, skipping occurrences preceded by "\".
func indexUnescaped(text, sep string) int {
	for i := 0; i+len(sep) <= len(text); i++ {
		if text[i] == '\\' {
			i++
			continue
		}
		if strings.HasPrefix(text[i:], sep) {
			return i
		}
	}
	return -1
}

// Breaks replaces forced line breaks with sep.
func Breaks(text, sep string) string {
	return strings.ReplaceAll(text, LineBreak, sep)
}
