package document

import (
	"errors"
	"fmt"
)

// Errors returned by document loading.
var (
	// ErrNotFound indicates the document file doesn't exist in the layer.
	ErrNotFound = errors.New("document not found")

	// ErrSchema indicates the document parsed but violates the expected shape.
	ErrSchema = errors.New("schema violation")

	// ErrUnsupportedFormat indicates the file extension has no registered parser.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// ParseError represents an error while parsing a document.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParse reports whether err is (or wraps) a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// SchemaError describes a document whose structure doesn't match the
// expected schema. Unlike parse errors these are never swallowed by
// layered loading.
type SchemaError struct {
	// Path is the document path (may be empty when the producer doesn't know it).
	Path string
	// Field is the offending field or key path.
	Field string
	// Reason describes the violation.
	Reason string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	switch {
	case e.Path != "" && e.Field != "":
		return fmt.Sprintf("schema error in %s: %s: %s", e.Path, e.Field, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("schema error: %s: %s", e.Field, e.Reason)
	case e.Path != "":
		return fmt.Sprintf("schema error in %s: %s", e.Path, e.Reason)
	default:
		return fmt.Sprintf("schema error: %s", e.Reason)
	}
}

// Is implements error matching for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}
