package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/oscarbenjamin/txt2bb/internal/markup"
	"github.com/oscarbenjamin/txt2bb/internal/question"
)

const pageStyle = `body{font-family:system-ui,sans-serif;max-width:52rem;margin:2rem auto;padding:0 1rem;color:#1f2328}
h1{font-size:1.4rem}
.meta{color:#656d76}
.question{margin:1.2rem 0;padding:.8rem 1rem;border:1px solid #d0d7de;border-radius:6px}
.tag{font:600 .75rem monospace;color:#0969da;margin-right:.5rem}
.origin{font-size:.75rem;color:#656d76}
.answers{margin:.6rem 0 0;padding-left:1.2rem}
.answers .label{font-weight:600;margin-right:.4rem}
.correct .label{color:#1a7f37}
.incorrect .label{color:#cf222e}
img{max-width:100%}`

var pageHead = `<script>window.MathJax={tex:{inlineMath:[["$","$"]],displayMath:[["$$","$$"]],processEscapes:true}};</script>` +
	`<script async src="` + MathJaxURL + `"></script>` +
	`<style>` + pageStyle + `</style>`

// row is one labelled answer line of a question.
type row struct {
	label string
	text  string
	class string
}

func pageTitle(opts Options) string {
	if opts.Title == "" {
		return "Question bank preview"
	}
	return opts.Title
}

func questionCount(set question.Set) string {
	return fmt.Sprintf("%d questions", set.Len())
}

func questionAnchor(number int) string {
	return "q" + strconv.Itoa(number)
}

// origin names the block and variant a question was expanded from.
func origin(q question.Question) string {
	label := "block " + strconv.Itoa(q.Block)
	if q.Variant > 0 {
		label += ", variant " + strconv.Itoa(q.Variant+1)
	}
	return label
}

// text escapes an authored value and renders its breaks and images.
func text(value string) string {
	escaped := templ.EscapeString(value)
	escaped = markup.Breaks(escaped, "<br>")
	return markup.ReplaceImages(escaped, func(name string) string {
		return fmt.Sprintf("<img src=\"%s\" alt=\"%s\">", name, name)
	})
}

func answerRows(q question.Question) []row {
	switch q.Type {
	case question.MultipleChoice, question.MultipleAnswer:
		rows := make([]row, 0, len(q.Answers))
		for _, answer := range q.Answers {
			rows = append(rows, row{label: string(answer.Label), text: answer.Text, class: string(answer.Label)})
		}
		return rows
	case question.TrueFalse, question.Ordering:
		rows := make([]row, 0, len(q.Answers))
		for i, answer := range q.Answers {
			label := strconv.Itoa(i + 1)
			if q.Type == question.TrueFalse {
				label = "answer"
			}
			rows = append(rows, row{label: label, text: answer.Text})
		}
		return rows
	case question.Essay, question.ShortResponse:
		if q.Example == nil {
			return nil
		}
		return []row{{label: "example", text: *q.Example}}
	case question.Matching:
		left := q.AnswersWith(question.LabelMatchA)
		right := q.AnswersWith(question.LabelMatchB)
		rows := make([]row, 0, len(left))
		for i := range left {
			rows = append(rows, row{label: strconv.Itoa(i + 1), text: left[i].Text + " → " + right[i].Text})
		}
		return rows
	case question.Numeric:
		rows := []row{{label: "answer", text: question.FormatNumber(q.Answers[0].Text)}}
		if q.Tolerance != nil {
			rows = append(rows, row{label: "tolerance", text: "±" + question.FormatNumber(*q.Tolerance)})
		}
		return rows
	case question.JumbledSentence, question.FillInMultipleBlanks:
		rows := make([]row, 0, len(q.Answers))
		for _, answer := range q.Answers {
			vars := strings.Join(answer.Variables, ", ")
			if vars == "" {
				vars = "none"
			}
			rows = append(rows, row{label: answer.Text, text: vars})
		}
		return rows
	default:
		return nil
	}
}
