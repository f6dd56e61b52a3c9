// Package merge decides how a computed value lands in a destination field.
//
// Merging is idempotent: a value already present in the destination, verbatim,
// up to self-closing tag serialization or up to Unicode canonical equivalence,
// is never written twice.
package merge

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Separator is the markup placed between values appended to one field.
const Separator = "<br><br>"

// Decision is the outcome of Merge.
type Decision int

const (
	// Duplicate means the destination already holds the value.
	Duplicate Decision = iota
	// Filled means the destination is non-empty and the rule only copies into empty fields.
	Filled
	// Set means the empty destination receives the value.
	Set
	// Appended means the value is added after the existing content and a separator.
	Appended
)

func (d Decision) String() string {
	switch d {
	case Duplicate:
		return "duplicate"
	case Filled:
		return "destination_filled"
	case Set:
		return "set"
	case Appended:
		return "appended"
	default:
		return "unknown"
	}
}

// Writes reports whether the decision changes the destination.
func (d Decision) Writes() bool {
	return d == Set || d == Appended
}

var selfClosingTag = regexp.MustCompile(`<([A-Za-z][^<>]*?)\s*/>`)

// OpenSelfClosing rewrites self-closing tags to their non-self-closing form:
// `<img src="a.jpg" />` becomes `<img src="a.jpg">`.
func OpenSelfClosing(s string) string {
	return selfClosingTag.ReplaceAllString(s, "<$1>")
}

// Equivalent reports whether dest already contains value, either verbatim or
// with value's self-closing tags opened the way the editor re-serializes them.
// Both forms are also tried with dest and value in NFC, so an editor that
// composes characters on save does not make a stored value look new.
func Equivalent(dest, value string) bool {
	opened := OpenSelfClosing(value)
	if strings.Contains(dest, value) || strings.Contains(dest, opened) {
		return true
	}
	if norm.NFC.IsNormalString(dest) && norm.NFC.IsNormalString(value) {
		return false
	}
	nfcDest := norm.NFC.String(dest)
	return strings.Contains(nfcDest, norm.NFC.String(value)) ||
		strings.Contains(nfcDest, norm.NFC.String(opened))
}

// Merge computes the new destination content for value.
// The returned string equals dest unless the decision writes.
func Merge(dest, value string, onlyIfEmpty bool) (string, Decision) {
	if Equivalent(dest, value) {
		return dest, Duplicate
	}
	if dest == "" {
		return value, Set
	}
	if onlyIfEmpty {
		return dest, Filled
	}
	return dest + Separator + value, Appended
}
