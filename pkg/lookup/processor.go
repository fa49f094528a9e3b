package lookup

import (
	"context"

	"github.com/robinjoseph08/golib/logger"
	"github.com/sagabooks/saga/pkg/catalog"
	"github.com/sagabooks/saga/pkg/config"
	"github.com/sagabooks/saga/pkg/keygen"
	"github.com/sagabooks/saga/pkg/models"
)

// Processor drives the per-book resolution workflow end to end. It is the
// only part of the engine with workflow state; everything it calls is a pure
// function or a thin I/O wrapper. Runs are single-threaded on purpose so the
// source only ever sees one in-flight request per run.
type Processor struct {
	cfg     *config.Config
	catalog *catalog.Service
	keys    *keygen.KeyMaker
	source  Source
}

func NewProcessor(cfg *config.Config, store *catalog.Service, keys *keygen.KeyMaker, source Source) *Processor {
	return &Processor{
		cfg:     cfg,
		catalog: store,
		keys:    keys,
		source:  source,
	}
}

type ProcessBooksOptions struct {
	// Retry selects books whose previous run failed instead of books that
	// have never been tried.
	Retry bool
}

// ProcessBooks resolves every eligible book in the catalog. A book that
// can't be matched is marked tried_failed and the run moves on; only a
// catalog write failure aborts the batch, since that means the store itself
// is unusable.
func (p *Processor) ProcessBooks(ctx context.Context, opts ProcessBooksOptions) error {
	state := models.FetchStateNotTried
	if opts.Retry {
		state = models.FetchStateTriedFailed
	}

	books, err := p.catalog.ListBooks(ctx, catalog.ListBooksOptions{FetchState: &state})
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.Info("processing books", logger.Data{"count": len(books), "source": p.source.Name(), "retry": opts.Retry})

	for _, book := range books {
		log := log.Data(logger.Data{"book_id": book.ID, "title": book.Title})

		// resolveBook contains source errors internally, so an error here is
		// a catalog-store failure and has to stop the run before it burns
		// the fetch state of every remaining book.
		resolved, err := p.resolveBook(ctx, book)
		if err != nil {
			return err
		}

		if resolved == nil {
			log.Info("no acceptable match")
			book.FetchState = models.FetchStateTriedFailed
			if err := p.catalog.UpdateBook(ctx, book, catalog.UpdateBookOptions{Columns: []string{"fetch_state"}}); err != nil {
				return err
			}
			continue
		}

		log.Info("match found", logger.Data{"link": resolved.Link})
		if err := p.Merge(ctx, book, resolved); err != nil {
			return err
		}
	}

	return nil
}

// resolveBook works through the three query strategies in order and returns
// the resolved detail for the first acceptable match, or nil when every
// strategy exhausts. Source errors are contained here so one bad record
// can't abort the batch.
func (p *Processor) resolveBook(ctx context.Context, book *models.Book) (*ResolvedBook, error) {
	log := logger.FromContext(ctx)

	authors, err := p.catalog.ListAuthors(ctx, catalog.ListAuthorsOptions{BookID: &book.ID})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.Name)
	}

	// Strategy 1: title-prefix queries, most specific first.
	for _, query := range PlanTitleQueries(book.Title) {
		page, err := p.source.Search(ctx, query, 1)
		if err != nil {
			log.Warn("search failed", logger.Data{"query": query.Text, "error": err.Error()})
			continue
		}
		if best := SelectBest(page.Candidates, book.Title, names); best != nil {
			return p.resolveCandidate(ctx, best)
		}
	}

	// Strategy 2: author-only search, accumulating every page before
	// scoring so a match deep in the author's backlist still wins.
	if len(names) > 0 {
		query := PlanAuthorQuery(names)
		candidates := []Candidate{}
		for pageNum := 1; pageNum <= p.cfg.SearchPageLimit; pageNum++ {
			page, err := p.source.Search(ctx, query, pageNum)
			if err != nil {
				log.Warn("search failed", logger.Data{"query": query.Text, "page": pageNum, "error": err.Error()})
				break
			}
			candidates = append(candidates, page.Candidates...)
			if !page.More {
				break
			}
		}
		if best := SelectBest(candidates, book.Title, names); best != nil {
			return p.resolveCandidate(ctx, best)
		}
	}

	// Strategy 3: one combined title+author query.
	page, err := p.source.Search(ctx, PlanTitleAuthorQuery(book.Title, names), 1)
	if err != nil {
		log.Warn("search failed", logger.Data{"error": err.Error()})
		return nil, nil
	}
	if best := SelectBest(page.Candidates, book.Title, names); best != nil {
		return p.resolveCandidate(ctx, best)
	}

	return nil, nil
}

func (p *Processor) resolveCandidate(ctx context.Context, c *Candidate) (*ResolvedBook, error) {
	resolved, err := p.source.ResolveBook(ctx, c.Link)
	if err != nil {
		logger.FromContext(ctx).Warn("detail fetch failed", logger.Data{"link": c.Link, "error": err.Error()})
		return nil, nil
	}

	// The detail page doesn't always repeat the series label shown on the
	// search row, so the row's parse fills the gap.
	if resolved.SeriesTitle == "" && c.SeriesTitle != "" {
		resolved.SeriesTitle = c.SeriesTitle
		resolved.SeriesVolume = c.SeriesVolume
	}

	return resolved, nil
}
