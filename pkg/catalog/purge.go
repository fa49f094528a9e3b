package catalog

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/sagabooks/saga/pkg/models"
	"github.com/uptrace/bun"
)

// Purge clears all authors, series, genres, their link tables, and mirrored
// images so the graph can be rebuilt from stored source links. Book rows
// are never touched: their content-addressed ids are the stable spine of
// the catalog.
func (svc *Service) Purge(ctx context.Context) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		tables := []interface{}{
			(*models.BookAuthor)(nil),
			(*models.BookSeries)(nil),
			(*models.BookGenre)(nil),
			(*models.Author)(nil),
			(*models.Series)(nil),
			(*models.Genre)(nil),
			(*models.Image)(nil),
		}

		for _, model := range tables {
			_, err := tx.
				NewDelete().
				Model(model).
				Where("1 = 1").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
