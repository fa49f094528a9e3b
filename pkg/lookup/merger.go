package lookup

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/sagabooks/saga/pkg/catalog"
	"github.com/sagabooks/saga/pkg/errcodes"
	"github.com/sagabooks/saga/pkg/models"
)

// Merge upserts everything a resolved detail carries into the catalog and
// marks the book tried_success. Every sub-step is idempotent per entity, so
// re-merging the same detail leaves the catalog unchanged, and a crash
// mid-merge is repaired by simply re-running the book.
func (p *Processor) Merge(ctx context.Context, book *models.Book, resolved *ResolvedBook) error {
	if err := p.mergeGenres(ctx, book, resolved); err != nil {
		return err
	}
	if err := p.mergeSeries(ctx, book, resolved); err != nil {
		return err
	}
	if err := p.mergeAuthors(ctx, book, resolved); err != nil {
		return err
	}
	return p.mergeBook(ctx, book, resolved)
}

func (p *Processor) mergeGenres(ctx context.Context, book *models.Book, resolved *ResolvedBook) error {
	for _, name := range resolved.Genres {
		id := p.keys.GenreKey(name)

		_, err := p.catalog.RetrieveGenre(ctx, id)
		if errors.Is(err, errcodes.NotFound("Genre")) {
			err = p.catalog.InsertGenre(ctx, &models.Genre{ID: id, Name: name})
		}
		if err != nil {
			return err
		}

		if err := p.catalog.LinkBookToGenre(ctx, book.ID, id); err != nil {
			return err
		}
	}

	return nil
}

func (p *Processor) mergeSeries(ctx context.Context, book *models.Book, resolved *ResolvedBook) error {
	if resolved.SeriesTitle == "" {
		return nil
	}

	id := p.keys.SeriesKey(resolved.SeriesTitle)

	_, err := p.catalog.RetrieveSeries(ctx, id)
	if errors.Is(err, errcodes.NotFound("Series")) {
		series := &models.Series{ID: id, Name: resolved.SeriesTitle}
		if resolved.SeriesLink != "" {
			series.Link = &resolved.SeriesLink
		}
		err = p.catalog.InsertSeries(ctx, series)
	}
	if err != nil {
		return err
	}

	return p.catalog.LinkBookToSeries(ctx, book.ID, id, resolved.SeriesVolume)
}

func (p *Processor) mergeAuthors(ctx context.Context, book *models.Book, resolved *ResolvedBook) error {
	for _, contributor := range resolved.Contributors {
		id := p.keys.AuthorKey(contributor.Name)

		author, err := p.catalog.RetrieveAuthor(ctx, id)
		switch {
		case errors.Is(err, errcodes.NotFound("Author")):
			author = &models.Author{
				ID:           id,
				Name:         contributor.Name,
				Role:         contributor.Role,
				SourceLinked: contributor.Link != "",
			}
			if contributor.Link != "" {
				author.Link = &contributor.Link
			}
			if err := p.catalog.InsertAuthor(ctx, author); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			// Already known, possibly from an earlier import with no source
			// link. Details improve across runs, so reconcile them.
			author.Role = contributor.Role
			if contributor.Link != "" {
				author.Link = &contributor.Link
				author.SourceLinked = true
			}
			err := p.catalog.UpdateAuthor(ctx, author, catalog.UpdateAuthorOptions{
				Columns: []string{"role", "link", "source_linked"},
			})
			if err != nil {
				return err
			}
		}

		if err := p.catalog.LinkBookToAuthor(ctx, book.ID, id, contributor.Role); err != nil {
			return err
		}
	}

	return nil
}

func (p *Processor) mergeBook(ctx context.Context, book *models.Book, resolved *ResolvedBook) error {
	book.LookupTitle = &resolved.Title
	book.LookupLink = &resolved.Link
	book.FetchState = models.FetchStateTriedSuccess
	columns := []string{"lookup_title", "lookup_link", "fetch_state"}

	if resolved.Description != "" {
		book.LookupDescription = &resolved.Description
		columns = append(columns, "lookup_description")
	}
	if resolved.CoverImageLink != "" {
		book.LookupCoverImage = &resolved.CoverImageLink
		columns = append(columns, "lookup_cover_image")
	}

	logger.FromContext(ctx).Info("book resolved", logger.Data{
		"book_id":      book.ID,
		"lookup_title": resolved.Title,
	})

	return p.catalog.UpdateBook(ctx, book, catalog.UpdateBookOptions{Columns: columns})
}
