package lookup

import (
	"context"

	"github.com/robinjoseph08/golib/logger"
	"github.com/sagabooks/saga/pkg/catalog"
	"github.com/sagabooks/saga/pkg/models"
)

// EnrichAuthors fills in bio fields for every source-linked author that
// hasn't been enriched yet by scraping their author page.
func (p *Processor) EnrichAuthors(ctx context.Context) error {
	log := logger.FromContext(ctx)

	src, ok := p.source.(AuthorSource)
	if !ok {
		log.Info("source has no author pages; skipping", logger.Data{"source": p.source.Name()})
		return nil
	}

	linked := true
	authors, err := p.catalog.ListAuthors(ctx, catalog.ListAuthorsOptions{SourceLinked: &linked})
	if err != nil {
		return err
	}

	log.Info("enriching authors", logger.Data{"count": len(authors)})

	for _, author := range authors {
		if author.Link == nil || author.About != nil {
			continue
		}
		log := log.Data(logger.Data{"author_id": author.ID, "name": author.Name})

		resolved, err := src.ResolveAuthor(ctx, *author.Link)
		if err != nil {
			log.Warn("author fetch failed", logger.Data{"error": err.Error()})
			continue
		}

		columns := applyAuthorDetail(author, resolved)
		if len(columns) == 0 {
			continue
		}

		err = p.catalog.UpdateAuthor(ctx, author, catalog.UpdateAuthorOptions{Columns: columns})
		if err != nil {
			return err
		}
	}

	return nil
}

// applyAuthorDetail copies the non-empty resolved fields onto the author
// row and returns the column names that changed.
func applyAuthorDetail(author *models.Author, resolved *ResolvedAuthor) []string {
	columns := []string{}
	assign := func(column, value string, field **string) {
		if value == "" {
			return
		}
		v := value
		*field = &v
		columns = append(columns, column)
	}

	assign("about", resolved.About, &author.About)
	assign("image_link", resolved.ImageLink, &author.ImageLink)
	assign("born_date", resolved.BornDate, &author.BornDate)
	assign("died_date", resolved.DiedDate, &author.DiedDate)
	assign("website", resolved.Website, &author.Website)
	assign("influences", resolved.Influences, &author.Influences)
	assign("genre_tags", resolved.GenreTags, &author.GenreTags)
	assign("twitter", resolved.Twitter, &author.Twitter)

	return columns
}
