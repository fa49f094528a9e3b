package lookup

import (
	"context"

	"github.com/robinjoseph08/golib/logger"
	"github.com/sagabooks/saga/pkg/catalog"
)

// CompleteSeries walks every series that hasn't been described yet, fetches
// its series page, stores the description, and links any member book that
// already exists in the catalog. A member is matched by its source link and
// only when the match is exactly 1:1; an ambiguous multi-match is dropped.
// This never creates book rows, it only links pre-existing ones.
func (p *Processor) CompleteSeries(ctx context.Context) error {
	log := logger.FromContext(ctx)

	src, ok := p.source.(SeriesSource)
	if !ok {
		log.Info("source has no series pages; skipping", logger.Data{"source": p.source.Name()})
		return nil
	}

	series, err := p.catalog.ListSeries(ctx, catalog.ListSeriesOptions{MissingDescription: true})
	if err != nil {
		return err
	}

	log.Info("completing series", logger.Data{"count": len(series)})

	for _, s := range series {
		if s.Link == nil {
			continue
		}
		log := log.Data(logger.Data{"series_id": s.ID, "series": s.Name})

		resolved, err := src.ResolveSeries(ctx, *s.Link)
		if err != nil {
			log.Warn("series fetch failed", logger.Data{"error": err.Error()})
			continue
		}

		if resolved.Description != "" {
			s.Description = &resolved.Description
			err := p.catalog.UpdateSeries(ctx, s, catalog.UpdateSeriesOptions{Columns: []string{"description"}})
			if err != nil {
				return err
			}
		}

		for _, entry := range resolved.Books {
			if entry.Link == "" {
				continue
			}

			books, err := p.catalog.ListBooks(ctx, catalog.ListBooksOptions{LookupLink: &entry.Link})
			if err != nil {
				return err
			}
			if len(books) != 1 {
				continue
			}

			if err := p.catalog.LinkBookToSeries(ctx, books[0].ID, s.ID, entry.Volume); err != nil {
				return err
			}
		}
	}

	return nil
}
