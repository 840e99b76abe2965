package parser

import (
	"strings"

	"github.com/oscarbenjamin/txt2bb/internal/question"
	"github.com/oscarbenjamin/txt2bb/internal/variant"
)

const (
	keyType      = "type"
	keyPrompt    = "prompt"
	keyExample   = "example"
	keyTolerance = "tolerance"
)

// ignoredKeys are accepted for older banks but no question type reads them.
var ignoredKeys = map[string]bool{
	"variable": true,
	"q_word":   true,
	"q_phrase": true,
}

// ParseBlock turns the "key: value" lines of a block into a record ready
// for variant expansion.
func ParseBlock(block Block) (variant.Record, error) {
	rec := variant.Record{Block: block.Ordinal, Line: block.Line}
	var typeLine *Line
	var hasPrompt bool

	for i := range block.Lines {
		line := block.Lines[i]
		key, value, ok := splitField(line.Text)
		if !ok {
			return variant.Record{}, &FieldValidationError{
				Block:   block.Ordinal,
				Variant: -1,
				Line:    line.Number,
				Field:   "line",
				Message: "expected \"key: value\"",
			}
		}
		field := variant.Field{Name: key, Line: line.Number, Text: value}

		switch {
		case key == keyType:
			if typeLine == nil {
				typeLine = &block.Lines[i]
				parsed, known := question.ParseType(value)
				if !known {
					return variant.Record{}, &UnknownTypeError{Block: block.Ordinal, Line: line.Number, Token: value}
				}
				rec.Type = parsed
			}
		case key == keyPrompt:
			if !hasPrompt {
				rec.Prompt = field
				hasPrompt = true
			}
		case key == keyExample:
			if rec.Example == nil {
				rec.Example = &field
			}
		case key == keyTolerance:
			if rec.Tolerance == nil {
				rec.Tolerance = &field
			}
		case ignoredKeys[key]:
		case isLabelKey(key):
			rec.Answers = append(rec.Answers, variant.Entry{
				Label: variant.Field{Name: "label", Line: line.Number, Text: key},
				Text:  variant.Field{Name: key, Line: line.Number, Text: value},
			})
		default:
			return variant.Record{}, &FieldValidationError{
				Block:   block.Ordinal,
				Variant: -1,
				Line:    line.Number,
				Field:   key,
				Message: "unrecognised key",
			}
		}
	}

	if typeLine == nil {
		return variant.Record{}, &FieldValidationError{Block: block.Ordinal, Variant: -1, Line: block.Line, Field: keyType, Message: "is required"}
	}
	if !hasPrompt || strings.TrimSpace(rec.Prompt.Text) == "" {
		line := block.Line
		if hasPrompt {
			line = rec.Prompt.Line
		}
		return variant.Record{}, &FieldValidationError{Block: block.Ordinal, Variant: -1, Line: line, Field: keyPrompt, Message: "is required"}
	}
	return rec, nil
}

// splitField splits "key: value" on the first colon that is not inside a
// %{...}% label group.
func splitField(text string) (string, string, bool) {
	match := fieldOpener.FindString(text)
	if match == "" {
		return "", "", false
	}
	key := strings.TrimSpace(strings.TrimSuffix(match, ":"))
	return key, strings.TrimSpace(text[len(match):]), true
}

// isLabelKey reports whether key is an answer label or a label group.
func isLabelKey(key string) bool {
	if _, ok := question.ParseLabel(key); ok {
		return true
	}
	return strings.HasPrefix(key, "%{") && strings.HasSuffix(key, "}%")
}
