// Package parsererror defines the typed errors raised while reading bank
// statements and categorizing their transactions.
package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedFormat is returned (wrapped in a FormatError) when no
// registered bank parser accepts a file.
var ErrUnrecognizedFormat = errors.New("unrecognized bank format")

// FormatError reports a file that no registered parser recognizes.
type FormatError struct {
	Supported []string
}

func (e *FormatError) Error() string {
	msg := "Unable to detect bank format. Please ensure your CSV is from a supported bank."
	if len(e.Supported) > 0 {
		msg += fmt.Sprintf(" Supported banks: %s.", strings.Join(e.Supported, ", "))
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return ErrUnrecognizedFormat
}

// MissingColumnsError reports a recognized file whose header lacks a column the
// parser needs. The whole file is rejected.
type MissingColumnsError struct {
	Parser  string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("Invalid %s CSV format: missing required columns (%s)",
		e.Parser, strings.Join(e.Columns, ", "))
}

// ParseError is a row-level failure. Rows that fail are skipped and logged.
type ParseError struct {
	Parser string
	Row    int
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: row %d: failed to parse %s='%s': %v",
		e.Parser, e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents an upload rejected before parsing.
type ValidationError struct {
	File   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.File, e.Reason)
}

// CategorizationError represents a failed categorization call. It never fails
// an upload job.
type CategorizationError struct {
	Strategy string
	Count    int
	Err      error
}

func (e *CategorizationError) Error() string {
	return fmt.Sprintf("categorization of %d transactions using %s failed: %v",
		e.Count, e.Strategy, e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}
