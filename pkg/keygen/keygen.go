// Package keygen assigns content-addressed identifiers to catalog entities.
// Identical normalized input always produces the identical key, across runs
// and across process restarts, so repeated imports collapse onto the same
// rows instead of minting duplicates.
package keygen

import (
	"fmt"
	"strings"

	"github.com/twmb/murmur3"
)

type KeyMaker struct{}

func New() *KeyMaker {
	return &KeyMaker{}
}

// AuthorKey keys an author by name. Case, whitespace, and periods are
// ignored so "J.R.R. Tolkien" and "jrr tolkien" collapse to one author.
func (k *KeyMaker) AuthorKey(name string) string {
	return makeKey(normalize(name))
}

// BookKey keys a book by its raw title plus the keys of its authors, so the
// same title by different authors yields distinct books while the same
// title/author pair always yields one.
func (k *KeyMaker) BookKey(title string, authorKeys []string) string {
	return makeKey(title + strings.Join(authorKeys, ""))
}

func (k *KeyMaker) SeriesKey(name string) string {
	return makeKey(name)
}

func (k *KeyMaker) GenreKey(name string) string {
	return makeKey(name)
}

func (k *KeyMaker) FileKey(path string) string {
	return makeKey(path)
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	return strings.ToLower(s)
}

// makeKey renders a 128-bit murmur3 digest (default seed) as a fixed-width
// uppercase hex string.
func makeKey(s string) string {
	h1, h2 := murmur3.StringSum128(s)
	return fmt.Sprintf("%016X%016X", h1, h2)
}
