package parser

import (
	"errors"
	"fmt"

	"github.com/oscarbenjamin/txt2bb/internal/variant"
)

// StructureError reports a block boundary violation.
type StructureError struct {
	// Block is the 1-based block ordinal, 0 when the fault precedes the
	// first block.
	Block   int
	Line    int
	Message string
}

func (err *StructureError) Error() string {
	if err.Block > 0 {
		return fmt.Sprintf("line %d: block %d: %s", err.Line, err.Block, err.Message)
	}
	return fmt.Sprintf("line %d: %s", err.Line, err.Message)
}

// FieldValidationError reports a missing or invalid field.
type FieldValidationError struct {
	Block int
	// Variant is the 0-based variant index, or -1 when the fault is found
	// before expansion.
	Variant int
	Line    int
	Field   string
	Message string
}

func (err *FieldValidationError) Error() string {
	where := fmt.Sprintf("block %d", err.Block)
	if err.Variant >= 0 {
		where += fmt.Sprintf(" variant %d", err.Variant+1)
	}
	if err.Line > 0 {
		where = fmt.Sprintf("line %d: %s", err.Line, where)
	}
	return fmt.Sprintf("%s: %s: %s", where, err.Field, err.Message)
}

// UnknownTypeError reports an unrecognised type tag.
type UnknownTypeError struct {
	Block int
	Line  int
	Token string
}

func (err *UnknownTypeError) Error() string {
	return fmt.Sprintf("line %d: block %d: unrecognised question type %q", err.Line, err.Block, err.Token)
}

// VariantCardinalityError reports variant groups of unequal length.
type VariantCardinalityError = variant.CardinalityError

// InvalidLabelVariantError reports a label variant that is not a label.
type InvalidLabelVariantError = variant.InvalidLabelError

// FileError attaches the source path to a parse failure.
type FileError struct {
	Path string
	Err  error
}

func (err *FileError) Error() string {
	return fmt.Sprintf("%s: %v", err.Path, err.Err)
}

func (err *FileError) Unwrap() error {
	return err.Err
}

// Kind names the taxonomy entry of a parse failure, or "" for other errors.
func Kind(err error) string {
	var structure *StructureError
	var field *FieldValidationError
	var unknown *UnknownTypeError
	var cardinality *VariantCardinalityError
	var label *InvalidLabelVariantError
	switch {
	case errors.As(err, &structure):
		return "StructureError"
	case errors.As(err, &field):
		return "FieldValidationError"
	case errors.As(err, &unknown):
		return "UnknownTypeError"
	case errors.As(err, &cardinality):
		return "VariantCardinalityError"
	case errors.As(err, &label):
		return "InvalidLabelVariantError"
	default:
		return ""
	}
}
