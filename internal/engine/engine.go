package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/fieldsync/internal/config"
	"github.com/roach88/fieldsync/internal/record"
	"github.com/roach88/fieldsync/internal/textnorm"
)

// NoReferenceNotice is sent to the Notifier when the subject text matches no
// other record at all.
const NoReferenceNotice = "No reference records found."

// Engine propagates reference field values into an edited record.
//
// Thread-safety model:
//   - Run/Propagate/OnFieldUnfocused: safe from any goroutine as long as the
//     Collection is; the engine itself holds no mutable state between runs
//   - The edited record passed to Run is mutated in place and must not be
//     shared with other goroutines during the call
//
// INVARIANTS:
//   - Rules are evaluated in declaration order
//   - The configuration is never modified after New
type Engine struct {
	coll     record.Collection
	cfg      config.Config
	notifier record.Notifier
	observer Observer
	logger   *slog.Logger
	runIDs   RunIDGenerator
}

// Option allows configuration of engine collaborators.
type Option func(*Engine)

// WithNotifier sets the receiver of user-facing notices.
//
// Default: notices are dropped.
func WithNotifier(n record.Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithObserver sets the receiver of per-rule outcomes (see package metrics).
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithLogger sets the structured logger.
//
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRunIDGenerator sets the run id source.
//
// Default: UUIDv7Generator. Tests use NewFixedGenerator for stable output.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) {
		e.runIDs = g
	}
}

// New creates an Engine over coll using cfg.
//
// The rule slices are copied so that later mutation by the caller cannot
// change evaluation order.
func New(coll record.Collection, cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		coll: coll,
		cfg: config.Config{
			SubjectField: cfg.SubjectField,
			WholeText:    append([]config.WholeTextRule(nil), cfg.WholeText...),
			Characters:   append([]config.CharacterRule(nil), cfg.Characters...),
		},
		notifier: record.NotifierFunc(func(string) {}),
		observer: nopObserver{},
		logger:   slog.Default(),
		runIDs:   UUIDv7Generator{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Propagate runs propagation for rec after changedField was edited and
// reports whether any field of rec changed. Failures are logged, never
// returned: the worst outcome is an unchanged record.
func (e *Engine) Propagate(ctx context.Context, rec *record.Record, changedField string) bool {
	res, err := e.Run(ctx, rec, changedField)
	if err != nil {
		e.logger.Warn("propagation finished with errors", "record", rec.ID, "error", err)
	}
	return res != nil && res.Changed
}

// OnFieldUnfocused is the editor hook: it receives the host's running changed
// flag, the edited record and the index of the field that lost focus, and
// returns the updated flag. An out-of-range index leaves the flag unchanged.
func (e *Engine) OnFieldUnfocused(ctx context.Context, changed bool, rec *record.Record, fieldIndex int) bool {
	name, ok := rec.FieldName(fieldIndex)
	if !ok {
		return changed
	}
	return e.Propagate(ctx, rec, name) || changed
}

// Run evaluates every rule for rec and persists rec when a field changed.
//
// The returned Result is non-nil whenever err is nil or joins only lookup
// failures; a persist failure returns the Result together with an error
// wrapping ErrPersist.
func (e *Engine) Run(ctx context.Context, rec *record.Record, changedField string) (*Result, error) {
	res := &Result{
		RunID:    e.runIDs.Generate(),
		RecordID: rec.ID,
		Outcomes: []Outcome{},
	}
	log := e.logger.With("run_id", res.RunID, "record", rec.ID)

	if reason := e.eligible(rec, changedField); reason != SkipNone {
		res.Skipped = reason
		log.Debug("propagation skipped", "reason", reason)
		e.observer.ObserveResult(res)
		return res, nil
	}

	raw, _ := rec.Get(e.cfg.SubjectField)
	subject := textnorm.Normalize(raw)
	if subject == "" {
		res.Skipped = SkipEmptySubject
		log.Debug("propagation skipped", "reason", SkipEmptySubject)
		e.observer.ObserveResult(res)
		return res, nil
	}
	res.Subject = subject

	r := &run{
		engine:  e,
		rec:     rec,
		subject: subject,
		res:     res,
		find:    newFinder(e.coll, rec.ID, log),
		log:     log,
	}

	r.checkReferences(ctx)
	r.wholeText(ctx)
	r.characters(ctx)

	if res.Changed {
		if err := e.coll.Persist(ctx, rec); err != nil {
			log.Error("persist failed", "error", err)
			r.errs = append(r.errs, fmt.Errorf("%w: record %s: %w", ErrPersist, rec.ID, err))
		}
	}

	log.Info("propagation finished",
		"subject", subject,
		"changed", res.Changed,
		"outcomes", len(res.Outcomes),
	)
	e.observer.ObserveResult(res)

	return res, errors.Join(r.errs...)
}

// eligible reports why rec cannot be propagated, or SkipNone.
//
// The record type must carry the subject field and at least one destination
// field of either rule family.
func (e *Engine) eligible(rec *record.Record, changedField string) SkipReason {
	if changedField != e.cfg.SubjectField {
		return SkipNotSubjectField
	}
	if !rec.HasField(e.cfg.SubjectField) {
		return SkipIneligibleType
	}
	for _, dst := range e.cfg.DestinationFields() {
		if rec.HasField(dst) {
			return SkipNone
		}
	}
	return SkipIneligibleType
}

// run is the state of one propagation.
type run struct {
	engine  *Engine
	rec     *record.Record
	subject string
	res     *Result
	find    *finder
	log     *slog.Logger
	errs    []error
}

// checkReferences sends NoReferenceNotice when whole-text rules exist and the
// subject is held by no other record. The candidate list is memoized, so the
// whole-text rules reuse it.
func (r *run) checkReferences(ctx context.Context) {
	if len(r.engine.cfg.WholeText) == 0 {
		return
	}
	ids, err := r.find.candidates(ctx, r.subject)
	if err != nil {
		// Reported per rule by wholeText.
		return
	}
	if len(ids) == 0 {
		r.log.Info("no reference records", "subject", r.subject)
		r.res.Noticed = true
		r.engine.notifier.Notify(NoReferenceNotice)
	}
}

func (r *run) record(o Outcome) {
	r.res.Outcomes = append(r.res.Outcomes, o)
	if o.Status.Wrote() {
		r.res.Changed = true
	}
	r.engine.observer.ObserveOutcome(o)
}

func (r *run) lookupFailed(o Outcome, text, sourceType string, err error) {
	lerr := &LookupError{Text: text, SourceType: sourceType, Rule: o.Rule, Err: err}
	r.log.Warn("lookup failed, rule skipped", "rule", o.Rule, "text", text, "error", err)
	r.errs = append(r.errs, lerr)
	o.Status = StatusLookupFailed
	r.record(o)
}
