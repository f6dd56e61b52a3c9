package engine

import (
	"context"

	"github.com/roach88/fieldsync/internal/config"
	"github.com/roach88/fieldsync/internal/merge"
	"github.com/roach88/fieldsync/internal/transform"
)

func (r *run) wholeText(ctx context.Context) {
	for _, rule := range r.engine.cfg.WholeText {
		r.applyWholeText(ctx, rule)
	}
}

func (r *run) applyWholeText(ctx context.Context, rule config.WholeTextRule) {
	o := Outcome{Rule: rule.Name, Kind: KindWholeText, Destination: rule.DestinationField}

	dest, ok := r.rec.Get(rule.DestinationField)
	if !ok {
		o.Status = StatusNoDestination
		r.record(o)
		return
	}
	if rule.CopyOnlyIfEmpty && dest != "" {
		o.Status = StatusDestinationFilled
		r.record(o)
		return
	}

	src, err := r.find.find(ctx, r.subject, rule.SourceType)
	if err != nil {
		r.lookupFailed(o, r.subject, rule.SourceType, err)
		return
	}
	if src == nil {
		o.Status = StatusNoMatch
		r.record(o)
		return
	}
	o.Source = src.ID

	raw, ok := src.Get(rule.SourceField)
	if !ok {
		o.Status = StatusNoSourceField
		r.record(o)
		return
	}

	value := transform.Apply(raw, r.subject, transform.Options{
		Remove:          rule.RemovePattern,
		BlankOut:        rule.BlankOut,
		BlankOutPattern: rule.BlankOutPattern,
	})

	r.write(&o, dest, value, rule.CopyOnlyIfEmpty)
	r.record(o)
}

// write merges value into the outcome's destination and sets its status.
func (r *run) write(o *Outcome, dest, value string, onlyIfEmpty bool) {
	merged, decision := merge.Merge(dest, value, onlyIfEmpty)
	o.Status = statusOf(decision)
	if !decision.Writes() {
		return
	}
	// The destination was read from rec, so Set cannot fail on schema.
	if err := r.rec.Set(o.Destination, merged); err != nil {
		r.log.Error("destination write rejected", "field", o.Destination, "error", err)
		o.Status = StatusNoDestination
		return
	}
	r.log.Debug("destination written",
		"rule", o.Rule,
		"field", o.Destination,
		"source", o.Source,
		"status", o.Status,
	)
}
