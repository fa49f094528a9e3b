// Package lookup resolves raw imported book records against an external
// bibliographic source and merges the results into the catalog. It owns the
// query planning, candidate scoring, and merge semantics; the per-source
// fetching and parsing live behind the Source interface.
package lookup

// Candidate is a single search-result row, considered during matching and
// discarded afterwards.
type Candidate struct {
	Title        string
	Authors      []string
	Link         string
	SeriesTitle  string
	SeriesVolume string
}

// Page is one page of search results. More indicates that the source has
// (or may have) another page after this one.
type Page struct {
	Candidates []Candidate
	More       bool
}

// Contributor is one name attached to a resolved book, with the role parsed
// from the annotation next to the name.
type Contributor struct {
	Name string
	Role string
	Link string
}

// ResolvedBook is the full structured detail for a confirmed candidate.
type ResolvedBook struct {
	Title          string
	Description    string
	Link           string
	CoverImageLink string
	SeriesTitle    string
	SeriesVolume   string
	SeriesLink     string
	Genres         []string
	Contributors   []Contributor
}

// ResolvedAuthor is the bio detail scraped from an author page. Empty
// strings mean the page didn't carry the field.
type ResolvedAuthor struct {
	Name       string
	About      string
	ImageLink  string
	BornDate   string
	DiedDate   string
	Website    string
	Influences string
	GenreTags  string
	Twitter    string
}

// SeriesBook is one entry on a series page.
type SeriesBook struct {
	Title     string
	Link      string
	ImageLink string
	Volume    string
}

// ResolvedSeries is the detail for a series page, including its member
// books in page order.
type ResolvedSeries struct {
	Title       string
	Description string
	Books       []SeriesBook
}

// Hint is one row of an operator-supplied override file mapping a book to
// its known-correct source link.
type Hint struct {
	BookID string `csv:"book_id"`
	Title  string `csv:"title"`
	Link   string `csv:"link"`
}
