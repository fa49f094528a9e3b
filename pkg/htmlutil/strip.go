// Package htmlutil flattens HTML fragments into plain text. Volume
// descriptions from metadata APIs arrive with embedded markup that has no
// business in the catalog.
package htmlutil

import (
	"html"
	"regexp"
	"strings"
)

var (
	// breakPattern matches closing block tags and line breaks, which become
	// newlines so paragraph structure survives the strip.
	breakPattern = regexp.MustCompile(`(?i)</(?:p|div|li|h[1-6])>|<br\s*/?>`)
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`[ \t]+`)
)

// StripTags removes markup from an HTML fragment, decodes entities, and
// collapses the result into trimmed, newline-separated paragraphs.
func StripTags(fragment string) string {
	if fragment == "" {
		return ""
	}

	text := breakPattern.ReplaceAllString(fragment, "\n")
	text = tagPattern.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	// Non-breaking spaces count as whitespace for collapsing purposes.
	text = strings.ReplaceAll(text, " ", " ")

	lines := strings.Split(text, "\n")
	paragraphs := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}

	return strings.Join(paragraphs, "\n")
}
