package question

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxOrderingAnswers is the largest ordering list the platform accepts.
const MaxOrderingAnswers = 20

// Issue captures a validation problem with one field of a question.
type Issue struct {
	Field   string
	Message string
}

type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

// allowedLabels lists the answer labels each type accepts.
var allowedLabels = map[Type][]Label{
	MultipleChoice:       {LabelCorrect, LabelIncorrect},
	MultipleAnswer:       {LabelCorrect, LabelIncorrect},
	Essay:                nil,
	ShortResponse:        nil,
	Numeric:              {LabelAnswer},
	Matching:             {LabelMatchA, LabelMatchB},
	JumbledSentence:      {LabelAnswer},
	TrueFalse:            {LabelAnswer},
	Ordering:             {LabelAnswer},
	FileResponse:         nil,
	OpinionScale:         nil,
	FillInMultipleBlanks: {LabelAnswer},
}

// Validate checks the per-type rules of a concrete question and returns
// every issue found, in field order.
func Validate(q Question) []Issue {
	collector := &issueCollector{}
	if !q.Type.Valid() {
		collector.add("type", fmt.Sprintf("unsupported type %s", q.Type))
		return collector.issues
	}
	if strings.TrimSpace(q.Prompt) == "" {
		collector.add("prompt", "is required")
	}

	allowed := allowedLabels[q.Type]
	for _, answer := range q.Answers {
		if !containsLabel(allowed, answer.Label) {
			collector.add(string(answer.Label), fmt.Sprintf("not allowed on %s questions", q.Type))
		}
	}
	if q.Example != nil && q.Type != Essay && q.Type != ShortResponse {
		collector.add("example", fmt.Sprintf("not allowed on %s questions", q.Type))
	}
	if q.Tolerance != nil && q.Type != Numeric {
		collector.add("tolerance", fmt.Sprintf("not allowed on %s questions", q.Type))
	}

	switch q.Type {
	case MultipleChoice:
		if n := len(q.AnswersWith(LabelCorrect)); n != 1 {
			collector.add("correct", fmt.Sprintf("exactly 1 correct answer required, got %d", n))
		}
		if len(q.Answers) < 2 {
			collector.add("incorrect", "at least 2 answers required")
		}
	case MultipleAnswer:
		if len(q.AnswersWith(LabelCorrect)) == 0 {
			collector.add("correct", "at least 1 correct answer required")
		}
	case TrueFalse:
		answers := q.AnswersWith(LabelAnswer)
		if len(answers) != 1 {
			collector.add("answer", fmt.Sprintf("exactly 1 answer required, got %d", len(answers)))
		} else if value := answers[0].Text; value != "true" && value != "false" {
			collector.add("answer", fmt.Sprintf("must be true or false, got %q", value))
		}
	case Ordering:
		if n := len(q.AnswersWith(LabelAnswer)); n < 1 || n > MaxOrderingAnswers {
			collector.add("answer", fmt.Sprintf("between 1 and %d answers required, got %d", MaxOrderingAnswers, n))
		}
	case Matching:
		left := len(q.AnswersWith(LabelMatchA))
		right := len(q.AnswersWith(LabelMatchB))
		if left == 0 {
			collector.add("match_a", "at least 1 pair required")
		}
		if left != right {
			collector.add("match_b", fmt.Sprintf("match_a has %d entries but match_b has %d", left, right))
		}
	case Numeric:
		answers := q.AnswersWith(LabelAnswer)
		switch {
		case len(answers) == 0:
			collector.add("answer", "is required")
		case len(answers) > 1:
			collector.add("answer", fmt.Sprintf("only 1 answer allowed, got %d", len(answers)))
		default:
			if _, err := ParseNumber(answers[0].Text); err != nil {
				collector.add("answer", err.Error())
			}
		}
		if q.Tolerance != nil {
			if _, err := ParseNumber(*q.Tolerance); err != nil {
				collector.add("tolerance", err.Error())
			}
		}
	case JumbledSentence:
		validateJumbled(q, collector)
	case FillInMultipleBlanks:
		if len(q.Answers) == 0 {
			collector.add("answer", "at least 1 blank required")
		}
		for _, answer := range q.Answers {
			if answer.Text == "" || len(answer.Variables) == 0 {
				collector.add("answer", fmt.Sprintf("blank %q is not given answers", answer.Text))
			}
		}
	}
	return collector.issues
}

func validateJumbled(q Question, collector *issueCollector) {
	if len(q.Answers) == 0 {
		collector.add("answer", "at least 1 choice required")
		return
	}
	var variables []string
	for _, answer := range q.Answers {
		variables = append(variables, answer.Variables...)
	}
	for _, variable := range variables {
		if strings.ContainsAny(variable, " \t") {
			collector.add("answer", fmt.Sprintf("variable %q must not contain spaces", variable))
		}
		if !strings.Contains(q.Prompt, variable) {
			collector.add("prompt", fmt.Sprintf("missing variable %q", variable))
		}
	}
	opening := strings.Count(q.Prompt, "[")
	closing := strings.Count(q.Prompt, "]")
	if opening != closing || opening != len(variables) {
		collector.add("prompt", fmt.Sprintf("expected %d bracketed variables, found %d '[' and %d ']'", len(variables), opening, closing))
	}
}

func containsLabel(labels []Label, label Label) bool {
	for _, candidate := range labels {
		if candidate == label {
			return true
		}
	}
	return false
}

// ParseNumber parses a finite decimal number.
func ParseNumber(value string) (float64, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsInf(parsed, 0) || math.IsNaN(parsed) {
		return 0, fmt.Errorf("%q is not a number", value)
	}
	return parsed, nil
}

// FormatNumber renders a number in canonical float form: integral values
// keep a trailing ".0" and very large or small values use an exponent.
func FormatNumber(value string) string {
	parsed, err := ParseNumber(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	abs := math.Abs(parsed)
	switch {
	case parsed == 0:
		return "0.0"
	case abs >= 1e16 || abs < 1e-4:
		return strconv.FormatFloat(parsed, 'e', -1, 64)
	case parsed == math.Trunc(parsed):
		return strconv.FormatFloat(parsed, 'f', -1, 64) + ".0"
	default:
		return strconv.FormatFloat(parsed, 'f', -1, 64)
	}
}
