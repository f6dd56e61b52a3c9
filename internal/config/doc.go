// Package config loads and compiles propagation configuration.
//
// A configuration document names the subject field and lists whole-text and
// per-character copy rules. Documents are YAML (.yaml, .yml) or CUE (.cue);
// CUE documents are unified with the embedded schema.cue before decoding.
//
// Compilation is eager: regular expressions are compiled, character filters
// resolved and required fields checked once, at load time. Every problem in a
// document is collected and reported together as Errors, so a malformed
// pattern surfaces once instead of silently disabling a rule at runtime.
//
// A compiled Config is immutable; the engine copies the rule slices it receives.
package config
