package app

import (
	"errors"
	"fmt"
)

var ErrInvalidPage = errors.New("page index must be positive")

// ParseError reports a field whose text could not be turned into a value.
type ParseError struct {
	Field string
	Raw   string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractionError reports a page that lacks a required element.
type ExtractionError struct {
	URL   string
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extract %s from %s: missing or empty", e.Field, e.URL)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }
