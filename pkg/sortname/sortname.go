// Package sortname derives library-style sort keys from display names, so
// that catalog listings order "Brandon Sanderson" under S and "The Eye of
// the World" under E.
package sortname

import "strings"

var leadingArticles = []string{"The", "A", "An"}

// wordSet is a case-insensitive membership list for small vocabularies.
type wordSet []string

func (s wordSet) contains(word string) bool {
	for _, w := range s {
		if strings.EqualFold(word, w) {
			return true
		}
	}
	return false
}

// honorifics are stripped from the front of a person's name.
var honorifics = wordSet{
	"Dr.", "Dr", "Mr.", "Mr", "Mrs.", "Mrs", "Ms.", "Ms",
	"Prof.", "Prof", "Rev.", "Rev", "Sir", "Dame", "Lord", "Lady",
}

// credentials are stripped from the end of a person's name.
var credentials = wordSet{
	"PhD", "Ph.D.", "Ph.D", "MD", "M.D.", "M.D", "JD", "J.D.", "J.D",
	"EdD", "Ed.D.", "Ed.D", "MBA", "M.B.A.", "MA", "M.A.", "MS", "M.S.",
	"RN", "R.N.", "Esq", "Esq.",
}

// generational suffixes distinguish people and stay in the sort key.
var generational = wordSet{
	"Jr.", "Jr", "Sr.", "Sr", "Junior", "Senior", "II", "III", "IV", "V",
}

// particles join the surname in the sort key rather than the given name.
var particles = wordSet{
	"van", "von", "de", "da", "di", "du", "del", "della",
	"la", "le", "el", "al", "bin", "ibn",
}

// ForTitle moves a leading article to the end of a title, preserving its
// original casing. Titles without a leading article pass through unchanged.
func ForTitle(title string) string {
	title = strings.TrimSpace(title)
	for _, article := range leadingArticles {
		prefix := article + " "
		if len(title) <= len(prefix) || !strings.EqualFold(title[:len(prefix)], prefix) {
			continue
		}
		rest := strings.TrimSpace(title[len(prefix):])
		if rest != "" {
			return rest + ", " + title[:len(article)]
		}
	}
	return title
}

// ForPerson converts a display name to "Surname, Given" form. Honorifics
// and academic credentials are dropped, generational suffixes are kept at
// the end, and surname particles stay attached to the surname.
func ForPerson(name string) string {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return strings.TrimSpace(name)
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, ",")
	}

	for len(parts) > 1 && honorifics.contains(parts[0]) {
		parts = parts[1:]
	}

	var suffixes []string
trim:
	for len(parts) > 1 {
		last := parts[len(parts)-1]
		switch {
		case generational.contains(last):
			suffixes = append([]string{last}, suffixes...)
			parts = parts[:len(parts)-1]
		case credentials.contains(last):
			parts = parts[:len(parts)-1]
		default:
			break trim
		}
	}

	if len(parts) == 1 {
		if len(suffixes) > 0 {
			return parts[0] + ", " + strings.Join(suffixes, ", ")
		}
		return parts[0]
	}

	// Particles stay attached to the surname. "Ursula K. Le Guin" files
	// under "Le Guin, Ursula K.".
	start := len(parts) - 1
	for start > 1 && particles.contains(parts[start-1]) {
		start--
	}

	key := strings.Join(parts[start:], " ") + ", " + strings.Join(parts[:start], " ")
	if len(suffixes) > 0 {
		key += ", " + strings.Join(suffixes, ", ")
	}
	return key
}
