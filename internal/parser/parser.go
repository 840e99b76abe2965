package parser

import (
	"fmt"
	"os"

	"github.com/oscarbenjamin/txt2bb/internal/question"
	"github.com/oscarbenjamin/txt2bb/internal/variant"
)

// Stats summarises what a parse produced. Expanded counts blocks that
// produced more than one question.
type Stats struct {
	Blocks    int `json:"blocks"`
	Expanded  int `json:"expanded_blocks"`
	Questions int `json:"questions"`
}

// ParseFile reads and parses a question bank file.
func ParseFile(path string, opts Options) (question.Set, Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return question.Set{}, Stats{}, fmt.Errorf("read question bank: %w", err)
	}
	set, stats, err := Parse(path, string(data), opts)
	if err != nil {
		return question.Set{}, Stats{}, &FileError{Path: path, Err: err}
	}
	return set, stats, nil
}

// Parse runs the normalize, split, field and expansion stages over content.
// Any failure aborts the whole file; no partial set is returned.
func Parse(source, content string, opts Options) (question.Set, Stats, error) {
	blocks, err := Split(Normalize(content), opts)
	if err != nil {
		return question.Set{}, Stats{}, err
	}
	set := question.Set{Source: source}
	stats := Stats{Blocks: len(blocks)}
	for _, block := range blocks {
		questions, err := parseBlock(block)
		if err != nil {
			return question.Set{}, Stats{}, err
		}
		if len(questions) > 1 {
			stats.Expanded++
		}
		set.Questions = append(set.Questions, questions...)
	}
	stats.Questions = len(set.Questions)
	return set, stats, nil
}

func parseBlock(block Block) ([]question.Question, error) {
	rec, err := ParseBlock(block)
	if err != nil {
		return nil, err
	}
	expanded, err := variant.Expand(rec)
	if err != nil {
		return nil, err
	}
	out := make([]question.Question, 0, len(expanded))
	for _, q := range expanded {
		q = question.AttachVariables(q)
		if issues := question.Validate(q); len(issues) > 0 {
			variantIndex := -1
			if len(expanded) > 1 {
				variantIndex = q.Variant
			}
			first := issues[0]
			return nil, &FieldValidationError{
				Block:   block.Ordinal,
				Variant: variantIndex,
				Line:    fieldLine(rec, first.Field),
				Field:   first.Field,
				Message: first.Message,
			}
		}
		out = append(out, q)
	}
	return out, nil
}

// fieldLine finds the first source line of a field, falling back to the
// block marker.
func fieldLine(rec variant.Record, field string) int {
	switch field {
	case keyPrompt:
		return rec.Prompt.Line
	case keyExample:
		if rec.Example != nil {
			return rec.Example.Line
		}
	case keyTolerance:
		if rec.Tolerance != nil {
			return rec.Tolerance.Line
		}
	}
	for _, entry := range rec.Answers {
		if entry.Text.Name == field {
			return entry.Text.Line
		}
	}
	return rec.Line
}
