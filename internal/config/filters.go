package config

import (
	"unicode"
)

// CharFilter selects the subject characters a character rule looks up.
type CharFilter func(r rune) bool

// Character filter names accepted in documents.
const (
	FilterAll         = "all"
	FilterIdeographic = "ideographic"
	FilterHan         = "han"
	FilterKana        = "kana"
	FilterLetter      = "letter"
)

// FilterNames lists the accepted character filter names.
var FilterNames = []string{FilterAll, FilterIdeographic, FilterHan, FilterKana, FilterLetter}

// LookupFilter resolves a filter name. The empty name means FilterAll.
func LookupFilter(name string) (CharFilter, bool) {
	switch name {
	case "", FilterAll:
		return func(rune) bool { return true }, true
	case FilterIdeographic:
		return func(r rune) bool { return unicode.Is(unicode.Ideographic, r) }, true
	case FilterHan:
		return func(r rune) bool { return unicode.Is(unicode.Han, r) }, true
	case FilterKana:
		return func(r rune) bool {
			return unicode.In(r, unicode.Hiragana, unicode.Katakana)
		}, true
	case FilterLetter:
		return unicode.IsLetter, true
	default:
		return nil, false
	}
}
