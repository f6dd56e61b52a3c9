package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fieldsync/internal/config"
)

// Scenario defines a propagation test scenario: a collection, a
// configuration, one edit and its expected effect.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Models declares the record types and their ordered field names.
	Models []ModelFixture `yaml:"models"`

	// Records are inserted in order under their explicit ids.
	Records []RecordFixture `yaml:"records"`

	// Config is the propagation configuration, in document form.
	Config config.Document `yaml:"config"`

	// Edit names the edited record and the field that lost focus.
	Edit EditStep `yaml:"edit"`

	// Expect is checked after the first run.
	Expect ExpectClause `yaml:"expect"`

	// Assertions are optional additional checks.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// RunID is the fixed run id for the first run.
	// If empty, defaults to "run-1" for deterministic golden comparison.
	RunID string `yaml:"run_id,omitempty"`
}

// ModelFixture declares one record type.
type ModelFixture struct {
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`
}

// RecordFixture is one record of the collection.
type RecordFixture struct {
	ID     int64             `yaml:"id"`
	Type   string            `yaml:"type"`
	Fields map[string]string `yaml:"fields"`
}

// EditStep is the simulated edit.
type EditStep struct {
	// Record is the id of the edited record.
	Record int64 `yaml:"record"`

	// Field is the field that lost focus.
	Field string `yaml:"field"`

	// Value, when set, is typed into Field before propagation runs.
	Value *string `yaml:"value,omitempty"`
}

// ExpectClause specifies the expected effect of the edit.
type ExpectClause struct {
	// Changed is the expected changed flag of the first run.
	Changed bool `yaml:"changed"`

	// Fields are expected final values of the edited record.
	// This is a subset match - only specified fields are validated.
	Fields map[string]string `yaml:"fields,omitempty"`
}

// Assertion validates outcomes, notices or persisted state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "outcome": an outcome matching the set fields was recorded
	// - "outcome_count": exactly Count outcomes were recorded
	// - "notice": Message was sent to the user
	// - "persisted": the stored edited record has the Fields values
	Type string `yaml:"type"`

	Rule        string `yaml:"rule,omitempty"`
	Destination string `yaml:"destination,omitempty"`
	Character   string `yaml:"character,omitempty"`
	Status      string `yaml:"status,omitempty"`

	Count   int               `yaml:"count,omitempty"`
	Message string            `yaml:"message,omitempty"`
	Fields  map[string]string `yaml:"fields,omitempty"`
}

// Assertion type constants.
const (
	AssertOutcome      = "outcome"
	AssertOutcomeCount = "outcome_count"
	AssertNotice       = "notice"
	AssertPersisted    = "persisted"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Models) == 0 {
		return fmt.Errorf("models list is required and must be non-empty")
	}

	models := make(map[string]bool, len(s.Models))
	for i, m := range s.Models {
		if m.Name == "" {
			return fmt.Errorf("models[%d]: name is required", i)
		}
		if len(m.Fields) == 0 {
			return fmt.Errorf("models[%d]: fields list is required", i)
		}
		models[m.Name] = true
	}

	ids := make(map[int64]bool, len(s.Records))
	for i, r := range s.Records {
		if r.ID <= 0 {
			return fmt.Errorf("records[%d]: id must be positive", i)
		}
		if ids[r.ID] {
			return fmt.Errorf("records[%d]: duplicate id %d", i, r.ID)
		}
		ids[r.ID] = true
		if !models[r.Type] {
			return fmt.Errorf("records[%d]: unknown type %q", i, r.Type)
		}
	}

	if s.Edit.Field == "" {
		return fmt.Errorf("edit.field is required")
	}
	if !ids[s.Edit.Record] {
		return fmt.Errorf("edit.record: no record with id %d", s.Edit.Record)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOutcome:
		if a.Rule == "" {
			return fmt.Errorf("assertions[%d]: rule is required for outcome", index)
		}
	case AssertOutcomeCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for outcome_count", index)
		}
	case AssertNotice:
		if a.Message == "" {
			return fmt.Errorf("assertions[%d]: message is required for notice", index)
		}
	case AssertPersisted:
		if len(a.Fields) == 0 {
			return fmt.Errorf("assertions[%d]: fields is required for persisted", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
