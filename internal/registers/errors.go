package registers

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match them with errors.Is; the returned errors
// wrap them with the offending value.
var (
	ErrUnknownTypeAlias       = errors.New("unknown type alias")
	ErrInvalidLength          = errors.New("invalid length")
	ErrMalformedSymbolicUnit  = errors.New("malformed symbolic unit")
	ErrMissingRequiredColumns = errors.New("missing required columns")
	ErrColumnConflict         = errors.New("conflicting columns")
	ErrInvalidNumber          = errors.New("invalid number")
	ErrEmptyInput             = errors.New("empty file")
)

// FieldConversionError reports a field supplier that failed for one row.
type FieldConversionError struct {
	Field string // Record field being built
	Value string // Raw cell text, when a single cell was involved
	Err   error
}

func (e *FieldConversionError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("field %q (value %q): %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldConversionError) Unwrap() error {
	return e.Err
}

// RowParseError annotates a failed data row with its position.
// Line counts data rows from 1 (the first row after the header);
// SourceLine is the physical line in the input where the row starts.
type RowParseError struct {
	Line       int
	SourceLine int
	Source     string
	Err        error
}

func (e *RowParseError) Error() string {
	src := e.Source
	if src == "" {
		src = "<input>"
	}
	return fmt.Sprintf("error while parsing line %d of %s: %v", e.Line, src, e.Err)
}

func (e *RowParseError) Unwrap() error {
	return e.Err
}
