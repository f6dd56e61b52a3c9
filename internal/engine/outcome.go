package engine

import (
	"github.com/roach88/fieldsync/internal/merge"
	"github.com/roach88/fieldsync/internal/record"
)

// RuleKind distinguishes the two rule families.
type RuleKind string

const (
	KindWholeText RuleKind = "whole_text"
	KindCharacter RuleKind = "character"
)

// Status is what happened to one destination field for one rule.
type Status string

const (
	StatusSet               Status = "set"
	StatusAppended          Status = "appended"
	StatusDuplicate         Status = "duplicate"
	StatusDestinationFilled Status = "destination_filled"
	StatusNoDestination     Status = "no_destination"
	StatusNoMatch           Status = "no_match"
	StatusNoSourceField     Status = "no_source_field"
	StatusLookupFailed      Status = "lookup_failed"
)

// Wrote reports whether the status changed the destination field.
func (s Status) Wrote() bool {
	return s == StatusSet || s == StatusAppended
}

func statusOf(d merge.Decision) Status {
	switch d {
	case merge.Set:
		return StatusSet
	case merge.Appended:
		return StatusAppended
	case merge.Filled:
		return StatusDestinationFilled
	default:
		return StatusDuplicate
	}
}

// SkipReason explains why a Run evaluated no rules.
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipNotSubjectField SkipReason = "not_subject_field"
	SkipIneligibleType  SkipReason = "ineligible_type"
	SkipEmptySubject    SkipReason = "empty_subject"
)

// Outcome records one rule evaluation against one destination field.
type Outcome struct {
	Rule        string    `json:"rule"`
	Kind        RuleKind  `json:"kind"`
	Destination string    `json:"destination"`
	Character   string    `json:"character,omitempty"`
	Source      record.ID `json:"source,omitempty"`
	Status      Status    `json:"status"`
}

// Result summarizes one Run.
type Result struct {
	RunID    string     `json:"run_id"`
	RecordID record.ID  `json:"record_id"`
	Subject  string     `json:"subject,omitempty"`
	Skipped  SkipReason `json:"skipped,omitempty"`
	Changed  bool       `json:"changed"`
	Noticed  bool       `json:"noticed,omitempty"`
	Outcomes []Outcome  `json:"outcomes"`
}

// Observer receives every outcome and every finished result.
// Implementations must be cheap and must not call back into the engine.
type Observer interface {
	ObserveOutcome(o Outcome)
	ObserveResult(r *Result)
}

type nopObserver struct{}

func (nopObserver) ObserveOutcome(Outcome)  {}
func (nopObserver) ObserveResult(*Result)   {}
