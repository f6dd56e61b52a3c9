package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a scenario result as stable, line-oriented text:
// run header, one line per outcome, one line per notice, then every field of
// the edited record in schema order.
func Snapshot(name string, result *Result) []byte {
	var buf bytes.Buffer
	run := result.Run

	fmt.Fprintf(&buf, "scenario: %s\n", name)
	fmt.Fprintf(&buf, "run: %s\n", run.RunID)
	fmt.Fprintf(&buf, "record: %s\n", run.RecordID)
	if run.Skipped != "" {
		fmt.Fprintf(&buf, "skipped: %s\n", run.Skipped)
	}
	if run.Subject != "" {
		fmt.Fprintf(&buf, "subject: %s\n", run.Subject)
	}
	fmt.Fprintf(&buf, "changed: %v\n", run.Changed)
	for _, o := range run.Outcomes {
		fmt.Fprintf(&buf, "outcome: %s\n", formatOutcome(o))
	}
	for _, n := range result.Notices {
		fmt.Fprintf(&buf, "notice: %s\n", n)
	}
	for _, f := range result.Fields {
		fmt.Fprintf(&buf, "field %s: %s\n", f.Name, f.Value)
	}

	return buf.Bytes()
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an already computed result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(name, result))
}
