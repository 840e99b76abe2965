// Package latex renders a question set as a standalone LaTeX document for
// proofreading.
package latex

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/oscarbenjamin/txt2bb/internal/markup"
	"github.com/oscarbenjamin/txt2bb/internal/question"
)

// DefaultPackages are loaded by every generated document.
var DefaultPackages = []string{"amsmath", "amssymb", "graphicx"}

// Options configures the document preamble.
type Options struct {
	// Packages replaces DefaultPackages when non-empty.
	Packages []string
	Title    string
}

const (
	enumStart = `\begin{enumerate}`
	enumEnd   = `\end{enumerate}`
	item      = `\item`
)

// answerItem is a labelled answer line of the rendered layout.
type answerItem struct {
	label string
	text  string
}

// Render produces the document source for set.
func Render(set question.Set, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	packages := opts.Packages
	if len(packages) == 0 {
		packages = DefaultPackages
	}
	buf.WriteString(`\documentclass{article}` + "\n")
	for _, pkg := range packages {
		fmt.Fprintf(&buf, "\\usepackage{%s}\n", pkg)
	}
	buf.WriteString(`\begin{document}` + "\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "\\section*{%s}\n", escapeText(opts.Title))
	}
	buf.WriteString(enumStart + "\n")
	for i, q := range set.Questions {
		lines, err := renderQuestion(q, i+1)
		if err != nil {
			return nil, err
		}
		buf.WriteString(item + "\n")
		for _, line := range lines {
			buf.WriteString(line + "\n")
		}
	}
	buf.WriteString(enumEnd + "\n")
	buf.WriteString(`\end{document}` + "\n")
	return buf.Bytes(), nil
}

func renderQuestion(q question.Question, number int) ([]string, error) {
	lines := []string{renderPrompt(q.Prompt, number)}
	items, err := answerItems(q)
	if err != nil {
		return nil, err
	}
	switch {
	case len(items) == 0:
	case len(items) == 1 || pairedLayout(q.Type):
		for i, it := range items {
			lines = append(lines, "", renderItem(it, number, i+1))
		}
	default:
		lines = append(lines, enumStart)
		for i, it := range items {
			lines = append(lines, item, renderItem(it, number, i+1))
		}
		lines = append(lines, enumEnd)
	}
	return lines, nil
}

// pairedLayout reports whether answers are listed as plain paragraphs
// because their labels carry the pairing.
func pairedLayout(t question.Type) bool {
	switch t {
	case question.Ordering, question.Matching, question.JumbledSentence, question.FillInMultipleBlanks:
		return true
	default:
		return false
	}
}

func answerItems(q question.Question) ([]answerItem, error) {
	switch q.Type {
	case question.MultipleChoice, question.MultipleAnswer, question.TrueFalse:
		items := make([]answerItem, 0, len(q.Answers))
		for _, answer := range q.Answers {
			items = append(items, answerItem{label: string(answer.Label), text: answer.Text})
		}
		return items, nil
	case question.Essay, question.ShortResponse:
		if q.Example == nil {
			return nil, nil
		}
		return []answerItem{{label: "example", text: *q.Example}}, nil
	case question.Ordering:
		items := make([]answerItem, 0, len(q.Answers))
		for i, answer := range q.Answers {
			items = append(items, answerItem{label: strconv.Itoa(i + 1), text: answer.Text})
		}
		return items, nil
	case question.Matching:
		left := q.AnswersWith(question.LabelMatchA)
		right := q.AnswersWith(question.LabelMatchB)
		items := make([]answerItem, 0, len(left)*2)
		for i := range left {
			pair := strconv.Itoa(i + 1)
			items = append(items,
				answerItem{label: pair + "a", text: left[i].Text},
				answerItem{label: pair + "b", text: right[i].Text},
			)
		}
		return items, nil
	case question.Numeric:
		items := []answerItem{{label: "answer", text: question.FormatNumber(q.Answers[0].Text)}}
		if q.Tolerance != nil {
			items = append(items, answerItem{label: "tolerance", text: `$\pm$` + question.FormatNumber(*q.Tolerance)})
		}
		return items, nil
	case question.JumbledSentence, question.FillInMultipleBlanks:
		items := make([]answerItem, 0, len(q.Answers))
		for _, answer := range q.Answers {
			text := strings.Join(answer.Variables, ", ")
			if text == "" {
				text = "none"
			}
			items = append(items, answerItem{label: answer.Text, text: text})
		}
		return items, nil
	case question.FileResponse, question.OpinionScale:
		return nil, nil
	default:
		return nil, fmt.Errorf("latex: unsupported question type %s", q.Type)
	}
}

func renderPrompt(prompt string, number int) string {
	text := markup.Breaks(escapePercent(prompt), `\\`)
	return withImages(text, number, "prompt")
}

func renderItem(it answerItem, number, position int) string {
	text := markup.Breaks(escapePercent(it.text), `\\`)
	text = strings.ReplaceAll(text, "$$", "$")
	text = withImages(text, number, fmt.Sprintf("answer %d", position))
	return fmt.Sprintf(`\emph{%s}: %s`, escapePercent(it.label), text)
}

// withImages renders image markers as full-width figures followed by a
// note saying where the image belongs in the upload.
func withImages(text string, number int, field string) string {
	return markup.ReplaceImages(text, func(name string) string {
		return "\n" + `\begin{center}\includegraphics[width=\linewidth]{` + name + `}\end{center}` + "\n" +
			fmt.Sprintf(`\emph{Upload: insert \texttt{%s} into question %d %s.}`, escapeText(name), number, field) + "\n"
	})
}

// escapePercent escapes every "%" not already escaped.
func escapePercent(text string) string {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] == '%' && (i == 0 || text[i-1] != '\\') {
			b.WriteString(`\%`)
			continue
		}
		b.WriteByte(text[i])
	}
	return b.String()
}

var textEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`_`, `\_`,
	`%`, `\%`,
	`&`, `\&`,
	`#`, `\#`,
	`$`, `\$`,
	`{`, `\{`,
	`}`, `\}`,
)

// escapeText escapes plain text such as file names for use in LaTeX.
func escapeText(text string) string {
	return textEscaper.Replace(text)
}
