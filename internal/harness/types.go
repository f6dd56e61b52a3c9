package harness

import (
	"github.com/roach88/fieldsync/internal/engine"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the expect clause and all assertions match.
	Pass bool `json:"pass"`

	// Run is the engine result of the first run.
	Run *engine.Result `json:"run"`

	// Fields are the edited record's values after the first run, in schema order.
	Fields []FieldValue `json:"fields"`

	// Notices are the user notices sent during the first run.
	Notices []string `json:"notices,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// FieldValue is one named field value.
type FieldValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Field returns the final value of the named field.
func (r *Result) Field(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}
