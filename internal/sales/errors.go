package sales

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies pipeline failures for presentation.
type ErrorKind string

const (
	KindMissingColumn ErrorKind = "missing_column"
	KindEmptyInput    ErrorKind = "empty_input"
	KindParse         ErrorKind = "parse"
	KindInternal      ErrorKind = "internal"
)

// MissingColumnError is returned when a table lacks columns an operation needs.
type MissingColumnError struct {
	Operation string
	Table     string
	Columns   []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing column(s) %s in table %q",
		e.Operation, strings.Join(e.Columns, ", "), e.Table)
}

// EmptyInputError is returned by operations that select a single extreme row
// and therefore have nothing to return for an empty table.
type EmptyInputError struct {
	Operation string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: undefined on empty input", e.Operation)
}

// ParseError reports a cell that could not be converted to its column type.
type ParseError struct {
	Source string
	Row    int // 1-based, header is row 1
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s row %d column %s: cannot parse %q", e.Source, e.Row, e.Column, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Kind maps an error from the pipeline or the loaders to its ErrorKind.
func Kind(err error) ErrorKind {
	var (
		missing *MissingColumnError
		empty   *EmptyInputError
		parse   *ParseError
	)
	switch {
	case errors.As(err, &missing):
		return KindMissingColumn
	case errors.As(err, &empty):
		return KindEmptyInput
	case errors.As(err, &parse):
		return KindParse
	default:
		return KindInternal
	}
}
