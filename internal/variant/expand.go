package variant

import (
	"fmt"

	"github.com/oscarbenjamin/txt2bb/internal/question"
)

// Field is one raw field value of a block with its source line.
type Field struct {
	Name string
	Line int
	Text string
}

// Entry is a raw answer line whose label may itself be a variant group.
type Entry struct {
	Label Field
	Text  Field
}

// Record is a parsed block before variant expansion.
type Record struct {
	Block     int
	Line      int
	Type      question.Type
	Prompt    Field
	Answers   []Entry
	Example   *Field
	Tolerance *Field
}

// CardinalityError reports variant groups of unequal length in one block.
type CardinalityError struct {
	Block int
	Line  int
	Field string
	Want  int
	Got   int
}

func (err *CardinalityError) Error() string {
	return fmt.Sprintf("block %d line %d: variant group in %s has %d alternatives, expected %d like the first group in the block",
		err.Block, err.Line, err.Field, err.Got, err.Want)
}

// InvalidLabelError reports a label-position variant that is not a label.
type InvalidLabelError struct {
	Block   int
	Variant int
	Line    int
	Text    string
}

func (err *InvalidLabelError) Error() string {
	return fmt.Sprintf("block %d line %d: variant %d resolves label to %q, expected one of correct, incorrect, answer, match_a, match_b",
		err.Block, err.Line, err.Variant+1, err.Text)
}

type compiledField struct {
	field    Field
	template Template
}

type compiledEntry struct {
	label compiledField
	text  compiledField
}

// compiledRecord is a record with every field tokenized.
type compiledRecord struct {
	source    Record
	prompt    compiledField
	answers   []compiledEntry
	example   *compiledField
	tolerance *compiledField
	// n is the shared alternative count, 0 when there are no groups.
	n int
}

// Count returns the shared alternative count of every group in the record,
// or 0 when the record has none.
func Count(rec Record) (int, error) {
	compiled, err := compile(rec)
	if err != nil {
		return 0, err
	}
	return compiled.n, nil
}

// Expand produces one question per variant index. A record without groups
// yields exactly one question with its fields unchanged.
func Expand(rec Record) ([]question.Question, error) {
	compiled, err := compile(rec)
	if err != nil {
		return nil, err
	}
	total := max(compiled.n, 1)
	out := make([]question.Question, 0, total)
	for i := 0; i < total; i++ {
		q, err := compiled.build(i)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func compile(rec Record) (compiledRecord, error) {
	counter := &cardinality{block: rec.Block}
	compiled := compiledRecord{source: rec, prompt: compileField(rec.Prompt)}
	if err := counter.check(compiled.prompt); err != nil {
		return compiledRecord{}, err
	}
	compiled.answers = make([]compiledEntry, 0, len(rec.Answers))
	for _, entry := range rec.Answers {
		answer := compiledEntry{label: compileField(entry.Label), text: compileField(entry.Text)}
		if err := counter.check(answer.label); err != nil {
			return compiledRecord{}, err
		}
		if err := counter.check(answer.text); err != nil {
			return compiledRecord{}, err
		}
		compiled.answers = append(compiled.answers, answer)
	}
	for _, optional := range []struct {
		field  *Field
		target **compiledField
	}{
		{rec.Example, &compiled.example},
		{rec.Tolerance, &compiled.tolerance},
	} {
		if optional.field == nil {
			continue
		}
		field := compileField(*optional.field)
		if err := counter.check(field); err != nil {
			return compiledRecord{}, err
		}
		*optional.target = &field
	}
	compiled.n = counter.n
	return compiled, nil
}

func compileField(field Field) compiledField {
	return compiledField{field: field, template: ParseTemplate(field.Text)}
}

// cardinality tracks the alternative count shared by every group of a block.
type cardinality struct {
	block int
	n     int
}

func (c *cardinality) check(field compiledField) error {
	for _, group := range field.template.Groups() {
		if c.n == 0 {
			c.n = len(group)
			continue
		}
		if len(group) != c.n {
			return &CardinalityError{
				Block: c.block,
				Line:  field.field.Line,
				Field: field.field.Name,
				Want:  c.n,
				Got:   len(group),
			}
		}
	}
	return nil
}

func (c compiledRecord) build(index int) (question.Question, error) {
	rec := c.source
	q := question.Question{
		Type:    rec.Type,
		Prompt:  c.prompt.template.Render(index),
		Answers: make([]question.Answer, 0, len(c.answers)),
		Block:   rec.Block,
		Variant: index,
		Line:    rec.Line,
	}
	for _, entry := range c.answers {
		rawLabel := entry.label.template.Render(index)
		label, ok := question.ParseLabel(rawLabel)
		if !ok {
			return question.Question{}, &InvalidLabelError{
				Block:   rec.Block,
				Variant: index,
				Line:    entry.label.field.Line,
				Text:    rawLabel,
			}
		}
		q.Answers = append(q.Answers, question.Answer{
			Label: label,
			Text:  entry.text.template.Render(index),
		})
	}
	if c.example != nil {
		value := c.example.template.Render(index)
		q.Example = &value
	}
	if c.tolerance != nil {
		value := c.tolerance.template.Render(index)
		q.Tolerance = &value
	}
	return q, nil
}
