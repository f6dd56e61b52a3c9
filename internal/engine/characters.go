package engine

import (
	"context"

	"github.com/roach88/fieldsync/internal/config"
)

func (r *run) characters(ctx context.Context) {
	for _, rule := range r.engine.cfg.Characters {
		r.applyCharacters(ctx, rule)
	}
}

// applyCharacters walks the subject left to right. Each character accepted by
// the rule's filter takes the next destination slot; the walk stops once the
// slots run out.
func (r *run) applyCharacters(ctx context.Context, rule config.CharacterRule) {
	slot := 0
	for _, c := range r.subject {
		if rule.Filter != nil && !rule.Filter(c) {
			continue
		}
		if slot >= len(rule.DestinationFields) {
			return
		}
		field := rule.DestinationFields[slot]
		slot++

		r.applyCharacter(ctx, rule, string(c), field)
	}
}

func (r *run) applyCharacter(ctx context.Context, rule config.CharacterRule, char, field string) {
	o := Outcome{Rule: rule.Name, Kind: KindCharacter, Destination: field, Character: char}

	dest, ok := r.rec.Get(field)
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

	src, err := r.find.find(ctx, char, rule.SourceType)
	if err != nil {
		r.lookupFailed(o, char, rule.SourceType, err)
		return
	}
	if src == nil {
		o.Status = StatusNoMatch
		r.record(o)
		return
	}
	o.Source = src.ID

	value, ok := src.Get(rule.SourceField)
	if !ok {
		o.Status = StatusNoSourceField
		r.record(o)
		return
	}

	r.write(&o, dest, value, rule.CopyOnlyIfEmpty)
	r.record(o)
}
