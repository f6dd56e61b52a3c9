package harness

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/fieldsync/internal/engine"
	"github.com/roach88/fieldsync/internal/record"
)

// AssertionContext provides access to the collection for persisted-state assertions.
type AssertionContext struct {
	Store    record.Collection
	Ctx      context.Context
	RecordID record.ID
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string           // Assertion type for categorization
	Expected string           // Human-readable expected outcome
	Actual   string           // Human-readable actual outcome
	Outcomes []engine.Outcome // All outcomes for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Outcomes) > 0 {
		fmt.Fprintf(&buf, "\nOutcomes:\n")
		for i, o := range e.Outcomes {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, formatOutcome(o))
		}
	}

	return buf.String()
}

// EvaluateAssertions checks all assertions and returns failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertOutcome:
		return assertOutcome(result.Run.Outcomes, a)
	case AssertOutcomeCount:
		return assertOutcomeCount(result.Run.Outcomes, a)
	case AssertNotice:
		return assertNotice(result.Notices, a)
	case AssertPersisted:
		return assertPersisted(actx, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertOutcome checks for an outcome matching every set field of a.
func assertOutcome(outcomes []engine.Outcome, a Assertion) error {
	for _, o := range outcomes {
		if o.Rule != a.Rule {
			continue
		}
		if a.Destination != "" && o.Destination != a.Destination {
			continue
		}
		if a.Character != "" && o.Character != a.Character {
			continue
		}
		if a.Status != "" && string(o.Status) != a.Status {
			continue
		}
		return nil
	}

	return &AssertionError{
		Type:     AssertOutcome,
		Expected: formatOutcome(engine.Outcome{Rule: a.Rule, Destination: a.Destination, Character: a.Character, Status: engine.Status(a.Status)}),
		Actual:   "no matching outcome",
		Outcomes: outcomes,
	}
}

func assertOutcomeCount(outcomes []engine.Outcome, a Assertion) error {
	if len(outcomes) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutcomeCount,
		Expected: fmt.Sprintf("%d outcomes", a.Count),
		Actual:   fmt.Sprintf("%d outcomes", len(outcomes)),
		Outcomes: outcomes,
	}
}

func assertNotice(notices []string, a Assertion) error {
	if slices.Contains(notices, a.Message) {
		return nil
	}
	return &AssertionError{
		Type:     AssertNotice,
		Expected: fmt.Sprintf("notice %q", a.Message),
		Actual:   fmt.Sprintf("notices %q", notices),
	}
}

// assertPersisted reads the edited record back from the collection.
func assertPersisted(actx *AssertionContext, a Assertion) error {
	if actx == nil || actx.Store == nil {
		return fmt.Errorf("persisted assertion requires a collection")
	}
	stored, err := actx.Store.Record(actx.Ctx, actx.RecordID)
	if err != nil {
		return fmt.Errorf("read edited record: %w", err)
	}

	for _, name := range sortedKeys(a.Fields) {
		got, ok := stored.Get(name)
		if !ok || got != a.Fields[name] {
			return &AssertionError{
				Type:     AssertPersisted,
				Expected: fmt.Sprintf("%s = %q", name, a.Fields[name]),
				Actual:   fmt.Sprintf("%s = %q", name, got),
			}
		}
	}
	return nil
}

func formatOutcome(o engine.Outcome) string {
	var b strings.Builder
	if o.Kind != "" {
		fmt.Fprintf(&b, "%s ", o.Kind)
	}
	b.WriteString(o.Rule)
	if o.Character != "" {
		fmt.Fprintf(&b, " [%s]", o.Character)
	}
	if o.Destination != "" {
		fmt.Fprintf(&b, " -> %s", o.Destination)
	}
	if o.Source != 0 {
		fmt.Fprintf(&b, " source=%s", o.Source)
	}
	if o.Status != "" {
		fmt.Fprintf(&b, " status=%s", o.Status)
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
