// Package engine implements field propagation for an edited record.
//
// When the subject field of a record loses focus, the engine normalizes the
// subject text, finds reference records holding that text (or, for character
// rules, each of its characters) as a complete field value, and merges the
// configured source fields into the edited record's destination fields.
//
// ARCHITECTURE:
//
// Run is synchronous and single-threaded. One call evaluates:
// 1. Eligibility: the changed field is the subject field, the record type has
//    the subject field and at least one destination, the subject is non-empty
// 2. Whole-text rules, in declaration order
// 3. Character rules, in declaration order, left to right over the subject
// 4. A single Persist of the edited record when any field changed
//
// The two rule families are independent: a whole-text miss never stops the
// character rules.
//
// CRITICAL PATTERNS:
//
// At-most-one-source:
// A lookup returns the first candidate, in collection order, whose record type
// matches the rule. Later candidates are never consulted.
//
// Idempotent merge:
// Values already present in a destination are not written again (see package
// merge), so running twice over unchanged data changes nothing the second time.
//
// Log and continue:
// A lookup failure skips the affected rule and is logged; the joined failures
// are returned alongside the result. Schema mismatches and misses are recorded
// as outcomes, not errors.
package engine
