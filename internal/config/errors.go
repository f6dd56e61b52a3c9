package config

import (
	"fmt"
	"strings"
)

// Error codes for configuration problems.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeUnsupported     = "E003" // Unsupported document format
	ErrCodeLoadFailed      = "E004" // Read or parse failure
	ErrCodeNotFound        = "E005" // Path not found
	ErrCodeNoSubject       = "E201" // subject_field missing
	ErrCodeMissingField    = "E202" // Required rule field missing
	ErrCodeBadPattern      = "E203" // Pattern fails to compile
	ErrCodePatternNoGroup  = "E204" // blank_out_pattern without capture group
	ErrCodeUnknownFilter   = "E205" // Unknown character_filter
	ErrCodeNoDestinations  = "E206" // Empty destination_fields
	ErrCodeSchemaViolation = "E207" // CUE schema violation
)

// CompileError is one problem found while compiling a document.
type CompileError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Errors is every problem found in one document.
type Errors []*CompileError

func (e Errors) Error() string {
	switch len(e) {
	case 0:
		return "no configuration errors"
	case 1:
		return e[0].Error()
	}
	parts := make([]string, len(e))
	for i, ce := range e {
		parts[i] = ce.Error()
	}
	return fmt.Sprintf("%d configuration errors:\n  %s", len(e), strings.Join(parts, "\n  "))
}

// LoadError is a failure to read or parse a configuration file.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
