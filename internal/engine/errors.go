package engine

import (
	"errors"
	"fmt"
)

// ErrPersist wraps failures to persist the edited record after a change.
var ErrPersist = errors.New("persist edited record")

// LookupError is a collection failure while resolving a reference record.
type LookupError struct {
	// Text is the search text (subject or single character).
	Text string

	// SourceType is the record type the rule required.
	SourceType string

	// Rule names the rule being evaluated.
	Rule string

	Err error
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %q (type %q, rule %s): %v", e.Text, e.SourceType, e.Rule, e.Err)
}

// Unwrap returns the underlying collection error.
func (e *LookupError) Unwrap() error {
	return e.Err
}

// IsLookupError returns true if err is or wraps a LookupError.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}
