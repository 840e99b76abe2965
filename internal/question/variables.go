package question

import "strings"

// AttachVariables splits "choice: a, b" answer text into the choice and its
// variables for the types that carry them. Other questions are returned as is.
func AttachVariables(q Question) Question {
	if q.Type != JumbledSentence && q.Type != FillInMultipleBlanks {
		return q
	}
	out := q.Clone()
	for i, answer := range out.Answers {
		head, tail, found := strings.Cut(answer.Text, ":")
		if !found || strings.TrimSpace(tail) == "" {
			out.Answers[i].Text = strings.TrimSpace(strings.Trim(answer.Text, ":"))
			out.Answers[i].Variables = nil
			continue
		}
		out.Answers[i].Text = strings.TrimSpace(head)
		out.Answers[i].Variables = SplitUnescaped(tail, ',')
	}
	return out
}

// SplitUnescaped splits value on sep unless it is preceded by a backslash.
// Parts are trimmed and the escapes removed.
func SplitUnescaped(value string, sep byte) []string {
	var parts []string
	var current strings.Builder
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if ch == '\\' && i+1 < len(value) && value[i+1] == sep {
			current.WriteByte(sep)
			i++
			continue
		}
		if ch == sep {
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteByte(ch)
	}
	parts = append(parts, strings.TrimSpace(current.String()))
	return parts
}
