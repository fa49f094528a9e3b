// Package textmatch provides the string normalization and similarity
// primitives used to reconcile noisy imported titles and author names
// against bibliographic search results.
package textmatch

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	whitespaceRE     = regexp.MustCompile(`\s+`)
	juniorSuffixRE   = regexp.MustCompile(`(?i)\s*,?\s*jr\.?\s*$`)
	leadingTheRE     = regexp.MustCompile(`^the\s+|-\s*the\s+`)
	leadingAE        = regexp.MustCompile(`^a\s+|-\s*a\s+`)
	titlePunctuation = strings.NewReplacer(
		":", " ",
		"_", " ",
		"?", " ",
		"!", " ",
		"'", "",
		"’", "",
		"-", " ",
	)
)

// NormalizeTitle lowercases a title, drops the punctuation that varies
// between editions, strips a leading "the"/"a" article, and collapses
// whitespace.
func NormalizeTitle(s string) string {
	s = titlePunctuation.Replace(strings.ToLower(s))

	s = strings.TrimSpace(strings.TrimPrefix(s, "the"))
	s = leadingTheRE.ReplaceAllString(s, "")
	s = leadingAE.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ",", " ")

	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// NormalizeAuthor reduces an author name to a compact comparable form:
// generational "Jr" suffixes and nickname quotes dropped, then all
// whitespace and periods removed and the rest lowercased. This keeps
// "E.E. \"Doc\" Smith" and "EE Doc Smith" comparable.
func NormalizeAuthor(s string) string {
	s = strings.TrimSpace(juniorSuffixRE.ReplaceAllString(s, ""))
	s = strings.NewReplacer(`"`, " ", "'", " ").Replace(s)

	s = whitespaceRE.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ".", "")
	return strings.TrimSpace(strings.ToLower(s))
}

// Similarity is a Levenshtein-based similarity in [0, 1]. Identical strings
// score 1.0; an empty input scores 0.0.
func Similarity(s1, s2 string) float64 {
	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}
	if s1 == s2 {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(s1, s2)
	longest := len(s1)
	if len(s2) > longest {
		longest = len(s2)
	}
	return 1.0 - float64(distance)/float64(longest)
}

// SharedTokenCount counts the distinct whitespace tokens of a that have a
// token in b scoring above the similarity threshold. It rewards partial
// overlap between a candidate title and a target title beyond raw substring
// containment.
func SharedTokenCount(a, b string, threshold float64) int {
	bTokens := strings.Fields(b)
	seen := map[string]struct{}{}
	count := 0

	for _, tok := range strings.Fields(a) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}

		for _, other := range bTokens {
			if Similarity(tok, other) > threshold {
				count++
				break
			}
		}
	}

	return count
}
