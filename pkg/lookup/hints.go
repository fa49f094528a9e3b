package lookup

import (
	"context"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/sagabooks/saga/pkg/catalog"
	"github.com/sagabooks/saga/pkg/errcodes"
)

// ProcessHintFile reads an operator-supplied CSV of (book_id, title, link)
// rows and resolves each book directly from its link, bypassing search and
// scoring entirely. It exists to fix misses by hand.
func (p *Processor) ProcessHintFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	hints := []*Hint{}
	if err := gocsv.UnmarshalFile(f, &hints); err != nil {
		return errors.WithStack(err)
	}

	log := logger.FromContext(ctx)
	log.Info("processing hints", logger.Data{"count": len(hints), "path": path})

	for _, hint := range hints {
		log := log.Data(logger.Data{"book_id": hint.BookID, "link": hint.Link})

		book, err := p.catalog.RetrieveBook(ctx, catalog.RetrieveBookOptions{ID: &hint.BookID})
		if errors.Is(err, errcodes.NotFound("Book")) {
			log.Warn("hint references unknown book")
			continue
		}
		if err != nil {
			return err
		}

		resolved, err := p.source.ResolveBook(ctx, hint.Link)
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
