// Package blackboard renders a question set in the tab-delimited upload
// format accepted by the Blackboard question pool importer.
package blackboard

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/oscarbenjamin/txt2bb/internal/markup"
	"github.com/oscarbenjamin/txt2bb/internal/question"
)

const (
	breakTag  = "<br>"
	spacerTag = "<p></p>"
)

// Placement records where an image referenced by the upload belongs.
type Placement struct {
	Name     string
	Question int
	Field    string
}

// String renders the placement as an annotation line.
func (p Placement) String() string {
	return fmt.Sprintf("# image %s: question %d (%s)", p.Name, p.Question, p.Field)
}

// Render produces one row per question followed by one annotation line per
// image marker.
func Render(set question.Set) ([]byte, error) {
	var buf bytes.Buffer
	var placements []Placement
	for i, q := range set.Questions {
		row, images, err := Row(q, i+1)
		if err != nil {
			return nil, err
		}
		buf.WriteString(row)
		buf.WriteByte('\n')
		placements = append(placements, images...)
	}
	for _, placement := range placements {
		buf.WriteString(placement.String())
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Row renders a single question as its tab-delimited row. number is the
// 1-based position used in image placements.
func Row(q question.Question, number int) (string, []Placement, error) {
	cells, err := columns(q)
	if err != nil {
		return "", nil, err
	}
	var placements []Placement
	out := make([]string, 0, len(cells)+2)
	out = append(out, q.Type.Tag())

	prompt, images := cell(q.Prompt, number, "prompt")
	placements = append(placements, images...)
	out = append(out, prompt+spacerTag)

	for i, value := range cells {
		text, images := cell(value, number, fmt.Sprintf("answer %d", i+1))
		placements = append(placements, images...)
		out = append(out, text)
	}
	return strings.Join(out, "\t"), placements, nil
}

// columns lists the cells following the prompt, in upload order.
func columns(q question.Question) ([]string, error) {
	switch q.Type {
	case question.MultipleChoice, question.MultipleAnswer:
		cells := make([]string, 0, len(q.Answers)*2)
		for _, answer := range q.Answers {
			cells = append(cells, answer.Text, string(answer.Label))
		}
		return cells, nil
	case question.TrueFalse:
		return []string{q.Answers[0].Text}, nil
	case question.Essay, question.ShortResponse:
		if q.Example == nil {
			return nil, nil
		}
		return []string{*q.Example}, nil
	case question.Ordering:
		cells := make([]string, 0, len(q.Answers))
		for _, answer := range q.Answers {
			cells = append(cells, answer.Text)
		}
		return cells, nil
	case question.Matching:
		left := q.AnswersWith(question.LabelMatchA)
		right := q.AnswersWith(question.LabelMatchB)
		cells := make([]string, 0, len(left)*2)
		for i := range left {
			cells = append(cells, left[i].Text, right[i].Text)
		}
		return cells, nil
	case question.FileResponse, question.OpinionScale:
		return nil, nil
	case question.Numeric:
		cells := []string{question.FormatNumber(q.Answers[0].Text)}
		if q.Tolerance != nil {
			cells = append(cells, question.FormatNumber(*q.Tolerance))
		}
		return cells, nil
	case question.JumbledSentence, question.FillInMultipleBlanks:
		var cells []string
		for _, answer := range q.Answers {
			cells = append(cells, answer.Text)
			cells = append(cells, answer.Variables...)
			cells = append(cells, "")
		}
		return cells, nil
	default:
		return nil, fmt.Errorf("blackboard: unsupported question type %s", q.Type)
	}
}

// cell converts one authored value into upload markup.
func cell(value string, number int, field string) (string, []Placement) {
	var placements []Placement
	text := padAngles(value)
	text = markup.ReplaceMath(text, func(span markup.Span) string {
		return "$$" + Math(span.Body) + "$$"
	})
	text = markup.Breaks(text, breakTag)
	text = markup.ReplaceImages(text, func(name string) string {
		placements = append(placements, Placement{Name: name, Question: number, Field: field})
		return "[image: " + name + "]"
	})
	return text, placements
}

var (
	angle        = regexp.MustCompile(` *([<>]) *`)
	mathrmGroup  = regexp.MustCompile(`\\mathrm\{[^{}]*\}`)
	delimSpace   = regexp.MustCompile(`(\\left|\\right) +`)
	groupSpace   = regexp.MustCompile(`\} +([{\\])`)
	commandSpace = regexp.MustCompile(` +\\`)
)

// padAngles surrounds every "<" and ">" with single spaces so the
// platform does not read them as the start of a tag.
func padAngles(text string) string {
	return angle.ReplaceAllString(text, " $1 ")
}

// Math rewrites the body of a math span for the platform renderer, which
// drops plain spaces: "\text" becomes "\mathrm" with "\," for its spaces,
// spaces around commands are removed and any other space becomes "{}".
func Math(body string) string {
	body = strings.ReplaceAll(body, `\text{`, `\mathrm{`)
	body = mathrmGroup.ReplaceAllStringFunc(body, func(group string) string {
		return strings.ReplaceAll(group, " ", `\,`)
	})
	body = delimSpace.ReplaceAllString(body, "$1")
	body = groupSpace.ReplaceAllString(body, "}$1")
	body = commandSpace.ReplaceAllString(body, `\`)
	return strings.ReplaceAll(body, " ", "{}")
}
