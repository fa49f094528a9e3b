package lookup

import (
	"context"

	"github.com/robinjoseph08/golib/logger"
	"github.com/sagabooks/saga/pkg/catalog"
	"github.com/sagabooks/saga/pkg/models"
)

// PurgeAndRebuild clears the author/series/genre graph and rebuilds it by
// re-resolving every previously matched book straight from its stored
// source link. Book rows and their content-addressed ids survive untouched,
// so a rebuild against the same source data reproduces the same graph.
func (p *Processor) PurgeAndRebuild(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if err := p.catalog.Purge(ctx); err != nil {
		return err
	}

	state := models.FetchStateTriedSuccess
	books, err := p.catalog.ListBooks(ctx, catalog.ListBooksOptions{FetchState: &state})
	if err != nil {
		return err
	}

	log.Info("rebuilding catalog graph", logger.Data{"count": len(books)})

	for _, book := range books {
		if book.LookupLink == nil {
			continue
		}
		log := log.Data(logger.Data{"book_id": book.ID, "link": *book.LookupLink})

		resolved, err := p.source.ResolveBook(ctx, *book.LookupLink)
		if err != nil {
			log.Warn("detail fetch failed", logger.Data{"error": err.Error()})
			continue
		}

		if err := p.Merge(ctx, book, resolved); err != nil {
			return err
		}
	}

	return nil
}
