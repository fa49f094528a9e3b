package lookup

import "context"

// Source is an external bibliographic source. Search is paginated by a
// one-based page number; implementations translate that into whatever the
// source actually uses (a page query param, a start index). Implementations
// handle their own jitter delay and transport retries, so a nil-error return
// means the source answered, even if with zero candidates.
type Source interface {
	Name() string
	Search(ctx context.Context, query Query, page int) (*Page, error)
	ResolveBook(ctx context.Context, link string) (*ResolvedBook, error)
}

// SeriesSource is implemented by sources that expose series pages. Checked
// by type assertion; the series-completion workflow is skipped for sources
// that don't.
type SeriesSource interface {
	ResolveSeries(ctx context.Context, link string) (*ResolvedSeries, error)
}

// AuthorSource is implemented by sources that expose author bio pages.
type AuthorSource interface {
	ResolveAuthor(ctx context.Context, link string) (*ResolvedAuthor, error)
}
