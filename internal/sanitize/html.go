// Package sanitize cleans user-submitted text before it is stored.
// Event submissions arrive from a public form, so every free-text
// field passes through here on the way in.
package sanitize

import "github.com/microcosm-cc/bluemonday"

// plain strips markup entirely. Titles, categories, locations and host
// names render as text nodes, never as HTML.
var plain = bluemonday.StrictPolicy()

// richText keeps the formatting tags a description may carry (bold,
// italics, lists, links) and drops scripts, iframes, inline styles and
// event handler attributes.
var richText = bluemonday.UGCPolicy()

// Text returns the input with all markup removed.
func Text(input string) string {
	return plain.Sanitize(input)
}

// HTML cleans a description while preserving basic formatting.
func HTML(input string) string {
	return richText.Sanitize(input)
}

// TextSlice applies Text to every element. A nil slice stays nil.
func TextSlice(inputs []string) []string {
	if inputs == nil {
		return nil
	}
	out := make([]string, len(inputs))
	for i, input := range inputs {
		out[i] = Text(input)
	}
	return out
}
