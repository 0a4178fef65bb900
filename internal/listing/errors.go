package listing

import "fmt"

// ParseError represents an unrecoverable internal failure while parsing a
// listing. Absent fields are not errors; they fall back to sentinels.
type ParseError struct {
	Identifier string
	Message    string
	Cause      error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error for %s: %s: %v", e.Identifier, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error for %s: %s", e.Identifier, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
