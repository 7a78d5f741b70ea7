package model

import "fmt"

// MalformedInputError reports input that could not be decoded. Field names
// the offending field or column; Row is 1-based when the input is tabular.
type MalformedInputError struct {
	Field string
	Row   int
	Err   error
}

func (e *MalformedInputError) Error() string {
	msg := fmt.Sprintf("malformed input: field %q", e.Field)
	if e.Row > 0 {
		msg += fmt.Sprintf(" (row %d)", e.Row)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }
