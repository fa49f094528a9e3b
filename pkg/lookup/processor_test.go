package lookup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/sagabooks/saga/pkg/catalog"
	"github.com/sagabooks/saga/pkg/config"
	"github.com/sagabooks/saga/pkg/keygen"
	"github.com/sagabooks/saga/pkg/migrations"
	"github.com/sagabooks/saga/pkg/models"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type fakeSource struct {
	pages    map[string][]Page
	books    map[string]*ResolvedBook
	series   map[string]*ResolvedSeries
	authors  map[string]*ResolvedAuthor
	searches []string
}

func (s *fakeSource) Name() string {
	return "fake"
}

func (s *fakeSource) Search(ctx context.Context, query Query, page int) (*Page, error) {
	s.searches = append(s.searches, query.Text)
	pages := s.pages[query.Text]
	if page > len(pages) {
		return &Page{}, nil
	}
	return &pages[page-1], nil
}

func (s *fakeSource) ResolveBook(ctx context.Context, link string) (*ResolvedBook, error) {
	book, ok := s.books[link]
	if !ok {
		return nil, errors.New("detail page gave no content")
	}
	return book, nil
}

func (s *fakeSource) ResolveSeries(ctx context.Context, link string) (*ResolvedSeries, error) {
	series, ok := s.series[link]
	if !ok {
		return nil, errors.New("series page gave no content")
	}
	return series, nil
}

func (s *fakeSource) ResolveAuthor(ctx context.Context, link string) (*ResolvedAuthor, error) {
	author, ok := s.authors[link]
	if !ok {
		return nil, errors.New("author page gave no content")
	}
	return author, nil
}

func setupProcessor(t *testing.T, source Source) (*Processor, *catalog.Service, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	cfg := &config.Config{
		SearchRetryCount: 5,
		DetailRetryCount: 20,
		SearchPageLimit:  5,
	}

	store := catalog.NewService(db)
	return NewProcessor(cfg, store, keygen.New(), source), store, db
}

func seedBook(t *testing.T, store *catalog.Service, id, title string, authorNames ...string) {
	t.Helper()
	ctx := context.Background()
	keys := keygen.New()

	require.NoError(t, store.CreateBook(ctx, &models.Book{ID: id, Title: title, Location: "/" + id}))
	for _, name := range authorNames {
		authorID := keys.AuthorKey(name)
		if _, err := store.RetrieveAuthor(ctx, authorID); err != nil {
			require.NoError(t, store.InsertAuthor(ctx, &models.Author{ID: authorID, Name: name, Role: models.RoleAuthor}))
		}
		require.NoError(t, store.LinkBookToAuthor(ctx, id, authorID, models.RoleAuthor))
	}
}

func mistbornDetail() *ResolvedBook {
	return &ResolvedBook{
		Title:          "The Final Empire",
		Description:    "<p>What if the Dark Lord won?</p>",
		Link:           "https://example.com/book/1",
		CoverImageLink: "https://images.example.com/1.jpg",
		SeriesTitle:    "Mistborn",
		SeriesVolume:   "1",
		SeriesLink:     "https://example.com/series/40910",
		Genres:         []string{"Fantasy", "Fiction"},
		Contributors: []Contributor{
			{Name: "Brandon Sanderson", Role: models.RoleAuthor, Link: "https://example.com/author/38550"},
		},
	}
}

func TestProcessBooksResolvesViaTitleQuery(t *testing.T) {
	t.Parallel()
	ctx := logger.New().WithContext(context.Background())

	source := &fakeSource{
		pages: map[string][]Page{
			"Mistborn": {{Candidates: []Candidate{{
				Title:        "Mistborn: The Final Empire",
				Authors:      []string{"Brandon Sanderson"},
				Link:         "https://example.com/book/1",
				SeriesTitle:  "Mistborn",
				SeriesVolume: "1",
			}}}},
		},
		books: map[string]*ResolvedBook{"https://example.com/book/1": mistbornDetail()},
	}

	p, store, db := setupProcessor(t, source)
	seedBook(t, store, "B1", "Mistborn - The Final Empire", "Brandon Sanderson")

	require.NoError(t, p.ProcessBooks(ctx, ProcessBooksOptions{}))

	book, err := store.RetrieveBook(ctx, catalog.RetrieveBookOptions{ID: strPtr("B1")})
	require.NoError(t, err)
	require.Equal(t, models.FetchStateTriedSuccess, book.FetchState)
	require.Equal(t, "The Final Empire", *book.LookupTitle)
	require.Equal(t, "https://example.com/book/1", *book.LookupLink)

	series, err := store.ListSeries(ctx, catalog.ListSeriesOptions{})
	require.NoError(t, err)
	require.Len(t, series, 1)
	require.Equal(t, "Mistborn", series[0].Name)

	link := &models.BookSeries{}
	require.NoError(t, db.NewSelect().Model(link).Where("bs.book_id = ?", "B1").Scan(ctx))
	require.Equal(t, "1", link.Volume)

	genreCount, err := db.NewSelect().Model((*models.Genre)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, genreCount)
}

func TestProcessBooksExhaustsToFailed(t *testing.T) {
	t.Parallel()
	ctx := logger.New().WithContext(context.Background())

	// Every query returns the same candidate by a different author, so all
	// three strategies exhaust without a match.
	page := Page{Candidates: []Candidate{{
		Title:   "Mistborn: The Final Empire",
		Authors: []string{"Somebody Else"},
		Link:    "https://example.com/book/1",
	}}}
	source := &fakeSource{
		pages: map[string][]Page{
			"Mistborn":          {page},
			"Brandon+Sanderson": {page},
			"Mistborn+-+The+Final+Empire+Brandon+Sanderson": {page},
		},
	}

	p, store, db := setupProcessor(t, source)
	seedBook(t, store, "B1", "Mistborn - The Final Empire", "Brandon Sanderson")

	require.NoError(t, p.ProcessBooks(ctx, ProcessBooksOptions{}))

	book, err := store.RetrieveBook(ctx, catalog.RetrieveBookOptions{ID: strPtr("B1")})
	require.NoError(t, err)
	require.Equal(t, models.FetchStateTriedFailed, book.FetchState)
	require.Nil(t, book.LookupLink)

	// No graph rows appear for a failed lookup beyond the seeded author.
	for model, expected := range map[interface{}]int{
		(*models.Series)(nil): 0,
		(*models.Genre)(nil):  0,
		(*models.Author)(nil): 1,
	} {
		count, err := db.NewSelect().Model(model).Count(ctx)
		require.NoError(t, err)
		require.Equal(t, expected, count)
	}
}

func TestProcessBooksStoreFailureAborts(t *testing.T) {
	t.Parallel()
	ctx := logger.New().WithContext(context.Background())

	p, store, db := setupProcessor(t, &fakeSource{})
	seedBook(t, store, "B1", "Mistborn - The Final Empire", "Brandon Sanderson")

	// A broken store must abort the run rather than quietly marking every
	// book tried_failed.
	_, err := db.Exec("DROP TABLE book_authors")
	require.NoError(t, err)

	require.Error(t, p.ProcessBooks(ctx, ProcessBooksOptions{}))

	book, err := store.RetrieveBook(ctx, catalog.RetrieveBookOptions{ID: strPtr("B1")})
	require.NoError(t, err)
	require.Equal(t, models.FetchStateNotTried, book.FetchState)
}

func TestProcessBooksRetrySelectsFailed(t *testing.T) {
	t.Parallel()
	ctx := logger.New().WithContext(context.Background())

	source := &fakeSource{
		pages: map[string][]Page{
			"Mistborn": {{Candidates: []Candidate{{
				Title:   "Mistborn: The Final Empire",
				Authors: []string{"Brandon Sanderson"},
				Link:    "https://example.com/book/1",
			}}}},
		},
		books: map[string]*ResolvedBook{"https://example.com/book/1": mistbornDetail()},
	}

	p, store, _ := setupProcessor(t, source)
	seedBook(t, store, "B1", "Mistborn - The Final Empire", "Brandon Sanderson")

	book, err := store.RetrieveBook(ctx, catalog.RetrieveBookOptions{ID: strPtr("B1")})
	require.NoError(t, err)
	book.FetchState = models.FetchStateTriedFailed
	require.NoError(t, store.UpdateBook(ctx, book, catalog.UpdateBookOptions{Columns: []string{"fetch_state"}}))

	// A normal run skips it.
	require.NoError(t, p.ProcessBooks(ctx, ProcessBooksOptions{}))
	require.Empty(t, source.searches)

	// A retry run picks it up.
	require.NoError(t, p.ProcessBooks(ctx, ProcessBooksOptions{Retry: true}))
	book, err = store.RetrieveBook(ctx, catalog.RetrieveBookOptions{ID: strPtr("B1")})
	require.NoError(t, err)
	require.Equal(t, models.FetchStateTriedSuccess, book.FetchState)
}

func TestProcessBooksAuthorFallbackPaginates(t *testing.T) {
	t.Parallel()
	ctx := logger.New().WithContext(context.Background())

	// No dash in the title, so the title strategy yields nothing and the
	// author strategy pages through the backlist until the match shows up.
	match := Candidate{
		Title:   "Elantris",
		Authors: []string{"Brandon Sanderson"},
		Link:    "https://example.com/book/2",
	}
	source := &fakeSource{
		pages: map[string][]Page{
			"Brandon+Sanderson": {
				{Candidates: []Candidate{{Title: "Warbreaker", Authors: []string{"Brandon Sanderson"}, Link: "https://example.com/book/9"}}, More: true},
				{Candidates: []Candidate{match}},
			},
		},
		books: map[string]*ResolvedBook{
			"https://example.com/book/2": {
				Title: "Elantris",
				Link:  "https://example.com/book/2",
				Contributors: []Contributor{
					{Name: "Brandon Sanderson", Role: models.RoleAuthor},
				},
			},
		},
	}

	p, store, _ := setupProcessor(t, source)
	seedBook(t, store, "B1", "Elantris", "Brandon Sanderson")

	require.NoError(t, p.ProcessBooks(ctx, ProcessBooksOptions{}))

	book, err := store.RetrieveBook(ctx, catalog.RetrieveBookOptions{ID: strPtr("B1")})
	require.NoError(t, err)
	require.Equal(t, models.FetchStateTriedSuccess, book.FetchState)
}

func TestMergeIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := logger.New().WithContext(context.Background())

	p, store, db := setupProcessor(t, &fakeSource{})
	seedBook(t, store, "B1", "Mistborn - The Final Empire", "Brandon Sanderson")

	book, err := store.RetrieveBook(ctx, catalog.RetrieveBookOptions{ID: strPtr("B1")})
	require.NoError(t, err)

	require.NoError(t, p.Merge(ctx, book, mistbornDetail()))

	counts := func() map[string]int {
		out := map[string]int{}
		for name, model := range map[string]interface{}{
			"authors":      (*models.Author)(nil),
			"series":       (*models.Series)(nil),
			"genres":       (*models.Genre)(nil),
			"book_authors": (*models.BookAuthor)(nil),
			"book_series":  (*models.BookSeries)(nil),
			"book_genres":  (*models.BookGenre)(nil),
		} {
			count, err := db.NewSelect().Model(model).Count(ctx)
			require.NoError(t, err)
			out[name] = count
		}
		return out
	}

	first := counts()
	require.NoError(t, p.Merge(ctx, book, mistbornDetail()))
	require.Equal(t, first, counts())
}

func TestProcessHintFile(t *testing.T) {
	t.Parallel()
	ctx := logger.New().WithContext(context.Background())

	source := &fakeSource{
		books: map[string]*ResolvedBook{"https://example.com/book/1": mistbornDetail()},
	}

	p, store, _ := setupProcessor(t, source)
	seedBook(t, store, "B1", "Unmatchable Title", "Brandon Sanderson")

	path := filepath.Join(t.TempDir(), "hints.csv")
	content := "book_id,title,link\nB1,Unmatchable Title,https://example.com/book/1\nMISSING,Ghost,https://example.com/book/2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.NoError(t, p.ProcessHintFile(ctx, path))

	book, err := store.RetrieveBook(ctx, catalog.RetrieveBookOptions{ID: strPtr("B1")})
	require.NoError(t, err)
	require.Equal(t, models.FetchStateTriedSuccess, book.FetchState)
	require.Equal(t, "The Final Empire", *book.LookupTitle)

	// The hint never touched search.
	require.Empty(t, source.searches)
}

func TestCompleteSeries(t *testing.T) {
	t.Parallel()
	ctx := logger.New().WithContext(context.Background())

	source := &fakeSource{
		series: map[string]*ResolvedSeries{
			"https://example.com/series/40910": {
				Title:       "Mistborn",
				Description: "<p>The original trilogy.</p>",
				Books: []SeriesBook{
					{Title: "The Final Empire", Link: "https://example.com/book/1", Volume: "1"},
					{Title: "The Well of Ascension", Link: "https://example.com/book/2", Volume: "2"},
				},
			},
		},
	}

	p, store, db := setupProcessor(t, source)
	keys := keygen.New()

	seedBook(t, store, "B1", "Mistborn - The Final Empire", "Brandon Sanderson")
	book, err := store.RetrieveBook(ctx, catalog.RetrieveBookOptions{ID: strPtr("B1")})
	require.NoError(t, err)
	book.FetchState = models.FetchStateTriedSuccess
	book.LookupLink = strPtr("https://example.com/book/1")
	require.NoError(t, store.UpdateBook(ctx, book, catalog.UpdateBookOptions{Columns: []string{"fetch_state", "lookup_link"}}))

	seriesID := keys.SeriesKey("Mistborn")
	require.NoError(t, store.InsertSeries(ctx, &models.Series{
		ID:   seriesID,
		Name: "Mistborn",
		Link: strPtr("https://example.com/series/40910"),
	}))

	require.NoError(t, p.CompleteSeries(ctx))

	series, err := store.RetrieveSeries(ctx, seriesID)
	require.NoError(t, err)
	require.NotNil(t, series.Description)

	// Only the book that exists locally got linked; the second series entry
	// has no matching catalog book.
	links := []*models.BookSeries{}
	require.NoError(t, db.NewSelect().Model(&links).Scan(ctx))
	require.Len(t, links, 1)
	require.Equal(t, "B1", links[0].BookID)
	require.Equal(t, "1", links[0].Volume)
}

func TestEnrichAuthors(t *testing.T) {
	t.Parallel()
	ctx := logger.New().WithContext(context.Background())

	source := &fakeSource{
		authors: map[string]*ResolvedAuthor{
			"https://example.com/author/38550": {
				Name:     "Brandon Sanderson",
				About:    "Writes fast.",
				BornDate: "December 19, 1975",
				Website:  "https://www.brandonsanderson.com",
			},
		},
	}

	p, store, _ := setupProcessor(t, source)
	keys := keygen.New()

	authorID := keys.AuthorKey("Brandon Sanderson")
	require.NoError(t, store.InsertAuthor(ctx, &models.Author{
		ID:           authorID,
		Name:         "Brandon Sanderson",
		Role:         models.RoleAuthor,
		SourceLinked: true,
		Link:         strPtr("https://example.com/author/38550"),
	}))

	require.NoError(t, p.EnrichAuthors(ctx))

	author, err := store.RetrieveAuthor(ctx, authorID)
	require.NoError(t, err)
	require.Equal(t, "Writes fast.", *author.About)
	require.Equal(t, "December 19, 1975", *author.BornDate)
	require.Equal(t, "https://www.brandonsanderson.com", *author.Website)
	require.Nil(t, author.DiedDate)
}

func TestPurgeAndRebuild(t *testing.T) {
	t.Parallel()
	ctx := logger.New().WithContext(context.Background())

	source := &fakeSource{
		books: map[string]*ResolvedBook{"https://example.com/book/1": mistbornDetail()},
	}

	p, store, db := setupProcessor(t, source)
	seedBook(t, store, "B1", "Mistborn - The Final Empire", "Brandon Sanderson")

	book, err := store.RetrieveBook(ctx, catalog.RetrieveBookOptions{ID: strPtr("B1")})
	require.NoError(t, err)
	require.NoError(t, p.Merge(ctx, book, mistbornDetail()))

	seriesBefore, err := store.ListSeries(ctx, catalog.ListSeriesOptions{})
	require.NoError(t, err)
	require.Len(t, seriesBefore, 1)

	require.NoError(t, p.PurgeAndRebuild(ctx))

	// Book ids survive and the graph comes back under the same ids.
	seriesAfter, err := store.ListSeries(ctx, catalog.ListSeriesOptions{})
	require.NoError(t, err)
	require.Len(t, seriesAfter, 1)
	require.Equal(t, seriesBefore[0].ID, seriesAfter[0].ID)

	bookCount, err := db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, bookCount)
}

func strPtr(s string) *string {
	return &s
}
