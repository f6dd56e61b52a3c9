// Package transform computes the value copied from a source field: regex
// removal first, then optional blank-out masking of the subject text.
package transform

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaskRune is the character used for blank-out runs.
const MaskRune = '_'

// Options selects the transformations applied by Apply.
type Options struct {
	// Remove deletes every match from the value when set.
	Remove *regexp.Regexp

	// BlankOut masks the subject text inside the value.
	BlankOut bool

	// BlankOutPattern, when BlankOut is set, locates the span to mask through
	// its first capturing group. Ignored when BlankOut is false.
	BlankOutPattern *regexp.Regexp
}

// Apply runs the configured transformations on raw in order: removal, then blank-out.
func Apply(raw, subject string, opts Options) string {
	v := raw
	if opts.Remove != nil {
		v = RemoveMatches(v, opts.Remove)
	}
	if opts.BlankOut {
		v = BlankOut(v, subject, opts.BlankOutPattern)
	}
	return v
}

// RemoveMatches deletes every substring of value matched by re.
func RemoveMatches(value string, re *regexp.Regexp) string {
	return re.ReplaceAllLiteralString(value, "")
}

// BlankOut masks the subject inside value.
//
// With a pattern, the first match's first capture group is replaced by an
// underscore run of the same character length. When the pattern does not
// match, or its group captured nothing, every literal occurrence of subject
// is masked instead.
func BlankOut(value, subject string, pattern *regexp.Regexp) string {
	if pattern != nil {
		if loc := pattern.FindStringSubmatchIndex(value); len(loc) >= 4 && loc[2] >= 0 && loc[3] > loc[2] {
			return value[:loc[2]] + Mask(value[loc[2]:loc[3]]) + value[loc[3]:]
		}
	}
	return maskLiteral(value, subject)
}

func maskLiteral(value, subject string) string {
	if subject == "" {
		return value
	}
	return strings.ReplaceAll(value, subject, Mask(subject))
}

// Mask returns an underscore run with one underscore per character of s.
func Mask(s string) string {
	return strings.Repeat(string(MaskRune), utf8.RuneCountInString(s))
}
