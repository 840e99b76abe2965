package question

import (
	"fmt"
	"strings"
)

// Type identifies a Blackboard question type.
type Type int

const (
	// MultipleChoice has exactly one correct answer.
	MultipleChoice Type = iota + 1
	// MultipleAnswer has one or more correct answers.
	MultipleAnswer
	// Essay accepts free text with an optional example answer.
	Essay
	// ShortResponse behaves like Essay with a shorter answer box.
	ShortResponse
	// Numeric expects a number with an optional tolerance.
	Numeric
	// Matching pairs match_a entries with match_b entries by position.
	Matching
	// JumbledSentence maps choices onto bracketed prompt variables.
	JumbledSentence
	// TrueFalse expects a single true or false answer.
	TrueFalse
	// Ordering lists answers in their correct order.
	Ordering
	// FileResponse asks for a file upload.
	FileResponse
	// OpinionScale is a Likert question without answers.
	OpinionScale
	// FillInMultipleBlanks maps blank variables onto accepted answers.
	FillInMultipleBlanks
)

var typeTags = map[Type]string{
	MultipleChoice:       "MC",
	MultipleAnswer:       "MA",
	Essay:                "ESS",
	ShortResponse:        "SR",
	Numeric:              "NUM",
	Matching:             "MAT",
	JumbledSentence:      "JUMBLED_SENTENCE",
	TrueFalse:            "TF",
	Ordering:             "ORD",
	FileResponse:         "FIL",
	OpinionScale:         "OP",
	FillInMultipleBlanks: "FIB_PLUS",
}

// Types lists every supported type in a stable order.
var Types = []Type{
	MultipleChoice,
	MultipleAnswer,
	Essay,
	ShortResponse,
	Numeric,
	Matching,
	JumbledSentence,
	TrueFalse,
	Ordering,
	FileResponse,
	OpinionScale,
	FillInMultipleBlanks,
}

// Tag returns the upload-format tag for the type.
func (t Type) Tag() string {
	if tag, ok := typeTags[t]; ok {
		return tag
	}
	return ""
}

// String returns the tag, or a placeholder for unknown values.
func (t Type) String() string {
	if tag := t.Tag(); tag != "" {
		return tag
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// MarshalText encodes the type as its tag.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown question type %d", int(t))
	}
	return []byte(t.Tag()), nil
}

// UnmarshalText decodes a type tag.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, ok := ParseType(string(text))
	if !ok {
		return fmt.Errorf("unknown question type %q", string(text))
	}
	*t = parsed
	return nil
}

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	_, ok := typeTags[t]
	return ok
}

// Shuffleable reports whether answer order may be randomised.
func (t Type) Shuffleable() bool {
	switch t {
	case MultipleChoice, MultipleAnswer, JumbledSentence:
		return true
	default:
		return false
	}
}

// ParseType resolves a type tag. Matching is exact after trimming.
func ParseType(tag string) (Type, bool) {
	tag = strings.TrimSpace(tag)
	for t, candidate := range typeTags {
		if candidate == tag {
			return t, true
		}
	}
	return 0, false
}

// Label is the role tag on an answer line.
type Label string

const (
	LabelCorrect   Label = "correct"
	LabelIncorrect Label = "incorrect"
	LabelAnswer    Label = "answer"
	LabelMatchA    Label = "match_a"
	LabelMatchB    Label = "match_b"
)

// ParseLabel resolves an answer label, ignoring surrounding whitespace.
func ParseLabel(value string) (Label, bool) {
	switch label := Label(strings.TrimSpace(value)); label {
	case LabelCorrect, LabelIncorrect, LabelAnswer, LabelMatchA, LabelMatchB:
		return label, true
	default:
		return "", false
	}
}

// Answer is a single answer line of a question.
type Answer struct {
	Label Label  `json:"label"`
	Text  string `json:"text"`
	// Variables holds the bracketed prompt variables of a jumbled sentence
	// choice, or the accepted answers of a fill-in blank.
	Variables []string `json:"variables,omitempty"`
}

// Question is a fully parsed and expanded question.
type Question struct {
	Type      Type     `json:"type"`
	Prompt    string   `json:"prompt"`
	Answers   []Answer `json:"answers"`
	Example   *string  `json:"example,omitempty"`
	Tolerance *string  `json:"tolerance,omitempty"`
	// Block is the 1-based ordinal of the source block.
	Block int `json:"block"`
	// Variant is the 0-based variant index within the block.
	Variant int `json:"variant"`
	// Line is the 1-based line of the block marker.
	Line int `json:"line"`
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	out := q
	out.Answers = make([]Answer, len(q.Answers))
	for i, answer := range q.Answers {
		out.Answers[i] = answer
		if answer.Variables != nil {
			out.Answers[i].Variables = append([]string(nil), answer.Variables...)
		}
	}
	if q.Example != nil {
		example := *q.Example
		out.Example = &example
	}
	if q.Tolerance != nil {
		tolerance := *q.Tolerance
		out.Tolerance = &tolerance
	}
	return out
}

// AnswersWith returns the answers carrying the given label, in order.
func (q Question) AnswersWith(label Label) []Answer {
	var out []Answer
	for _, answer := range q.Answers {
		if answer.Label == label {
			out = append(out, answer)
		}
	}
	return out
}

// Set is the ordered list of questions produced from one input file.
type Set struct {
	Source    string     `json:"source"`
	Questions []Question `json:"questions"`
}

// Len returns the number of questions in the set.
func (s Set) Len() int {
	return len(s.Questions)
}

// CountByType tallies questions per type.
func (s Set) CountByType() map[Type]int {
	counts := make(map[Type]int)
	for _, q := range s.Questions {
		counts[q.Type]++
	}
	return counts
}
