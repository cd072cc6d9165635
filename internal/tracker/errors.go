package tracker

import "fmt"

// ValidationError reports a malformed caller-supplied filter value. Bounds
// are trimmed before parsing, so surrounding whitespace alone never
// triggers it.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: expected YYYY-MM-DD", e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ParseError reports a stored EntryDateTime that is not in the expected
// layout. It is a data fault and fails the whole query.
type ParseError struct {
	EntryID int
	Value   string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("entry %d: malformed EntryDateTime %q: %v", e.EntryID, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
