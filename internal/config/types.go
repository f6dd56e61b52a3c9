package config

import (
	"regexp"
)

// Config is a compiled, immutable propagation configuration.
type Config struct {
	SubjectField string
	WholeText    []WholeTextRule
	Characters   []CharacterRule
}

// WholeTextRule copies one source field of the first record matching the full
// subject text into one destination field.
type WholeTextRule struct {
	Name             string
	SourceField      string
	DestinationField string
	SourceType       string
	BlankOut         bool
	CopyOnlyIfEmpty  bool

	// RemovePattern deletes every match from the copied value. May be nil.
	RemovePattern *regexp.Regexp

	// BlankOutPattern locates the span to mask through its first capture group.
	// Only consulted when BlankOut is set. May be nil.
	BlankOutPattern *regexp.Regexp
}

// CharacterRule copies one source field of the record matching each filtered
// subject character into the destination field at that character's position.
type CharacterRule struct {
	Name              string
	SourceField       string
	SourceType        string
	DestinationFields []string
	CopyOnlyIfEmpty   bool
	FilterName        string
	Filter            CharFilter
}

// DestinationFields returns every destination field named by any rule,
// whole-text rules first, without duplicates.
func (c *Config) DestinationFields() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, r := range c.WholeText {
		add(r.DestinationField)
	}
	for _, r := range c.Characters {
		for _, d := range r.DestinationFields {
			add(d)
		}
	}
	return out
}
