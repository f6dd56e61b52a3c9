// Package textnorm turns raw field values into single-line search keys.
//
// A field value may carry HTML markup, embedded images and sound references.
// Normalize removes media references, converts markup to plain text and
// collapses whitespace to single spaces. Code points are left as stored:
// the key is compared byte for byte against raw field values.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var mediaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<img\b[^>]*>`),
	regexp.MustCompile(`(?is)<(?:audio|video)\b.*?</(?:audio|video)\s*>`),
	regexp.MustCompile(`\[sound:[^\]]+\]`),
	regexp.MustCompile(`\[\[type:[^\]]+\]\]`),
}

// Tags that render as a visual break; each becomes a space.
var breakTags = map[string]bool{
	"br": true, "div": true, "p": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Normalize returns the search key for a raw field value.
// Empty or whitespace-only input (after stripping) yields "".
func Normalize(raw string) string {
	text := ToText(StripMedia(raw))
	return strings.Join(strings.Fields(text), " ")
}

// StripMedia removes image tags, audio/video elements and [sound:...] references.
func StripMedia(s string) string {
	for _, re := range mediaPatterns {
		s = re.ReplaceAllString(s, "")
	}
	return s
}

// ToText converts HTML to plain text: tags are dropped, entities decoded,
// block and line-break tags become spaces, script and style bodies are skipped.
func ToText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skipDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF, or truncated markup: the text so far is the result.
			return b.String()

		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if tt == html.StartTagToken {
					skipDepth++
				}
				continue
			}
			if breakTags[tag] {
				b.WriteByte(' ')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
				continue
			}
			if breakTags[tag] {
				b.WriteByte(' ')
			}
		}
	}
}
