package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/roach88/fieldsync/internal/config"
	"github.com/roach88/fieldsync/internal/engine"
	"github.com/roach88/fieldsync/internal/record"
	"github.com/roach88/fieldsync/internal/store/memory"
)

// DefaultRunID is the run id used when a scenario does not set one.
const DefaultRunID = "run-1"

// Harness is the test execution engine for one scenario.
type Harness struct {
	store   *memory.Store
	engine  *engine.Engine
	notices []string
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory collection for isolation.
//
// Execution flow:
// 1. Create the collection from models and records
// 2. Compile the configuration
// 3. Apply the edit and run propagation
// 4. Run propagation again and require no change
// 5. Check the expect clause and assertions
//
// Setup problems (bad fixtures, invalid configuration) are returned as
// errors; behavioral mismatches are reported through Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := buildStore(ctx, scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to build collection: %w", err)
	}

	cfg, err := config.Compile(scenario.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to compile config: %w", err)
	}

	runID := scenario.RunID
	if runID == "" {
		runID = DefaultRunID
	}

	h := &Harness{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	h.engine = engine.New(st, cfg,
		engine.WithLogger(h.logger),
		engine.WithNotifier(record.NotifierFunc(func(m string) { h.notices = append(h.notices, m) })),
		engine.WithRunIDGenerator(engine.NewFixedGenerator(runID, runID+"-repeat")),
	)

	rec, err := st.Record(ctx, record.ID(scenario.Edit.Record))
	if err != nil {
		return nil, fmt.Errorf("failed to load edited record: %w", err)
	}
	if v := scenario.Edit.Value; v != nil {
		if err := rec.Set(scenario.Edit.Field, *v); err != nil {
			return nil, fmt.Errorf("failed to apply edit: %w", err)
		}
	}

	result := NewResult()

	run, err := h.engine.Run(ctx, rec, scenario.Edit.Field)
	if err != nil {
		return nil, fmt.Errorf("propagation failed: %w", err)
	}
	result.Run = run
	result.Notices = h.notices
	for _, name := range rec.FieldNames() {
		v, _ := rec.Get(name)
		result.Fields = append(result.Fields, FieldValue{Name: name, Value: v})
	}

	h.checkIdempotent(ctx, rec, scenario.Edit.Field, result)

	actx := &AssertionContext{Store: st, Ctx: ctx, RecordID: rec.ID}
	for _, errMsg := range checkExpect(result, scenario.Expect) {
		result.AddError(errMsg)
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// checkIdempotent runs propagation a second time over the same record and
// records an error if any field changes.
func (h *Harness) checkIdempotent(ctx context.Context, rec *record.Record, field string, result *Result) {
	before := rec.Values()

	again, err := h.engine.Run(ctx, rec, field)
	if err != nil {
		result.AddError(fmt.Sprintf("idempotence: second run failed: %v", err))
		return
	}
	if again.Changed || !maps.Equal(before, rec.Values()) {
		result.AddError(fmt.Sprintf("idempotence: second run changed the record: %v", rec.Values()))
	}
}

func buildStore(ctx context.Context, scenario *Scenario) (*memory.Store, error) {
	st := memory.New()
	for _, m := range scenario.Models {
		if err := st.AddModel(ctx, m.Name, m.Fields); err != nil {
			return nil, err
		}
	}
	for _, r := range scenario.Records {
		if err := st.Put(ctx, record.ID(r.ID), r.Type, r.Fields); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// checkExpect compares the first run against the expect clause.
func checkExpect(result *Result, expect ExpectClause) []string {
	var errs []string

	if result.Run.Changed != expect.Changed {
		errs = append(errs, fmt.Sprintf("expect.changed: want %v, got %v", expect.Changed, result.Run.Changed))
	}

	for _, name := range sortedKeys(expect.Fields) {
		got, ok := result.Field(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("expect.fields.%s: field not in record", name))
			continue
		}
		if want := expect.Fields[name]; got != want {
			errs = append(errs, fmt.Sprintf("expect.fields.%s: want %q, got %q", name, want, got))
		}
	}

	return errs
}
