package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/sagabooks/saga/pkg/errcodes"
	"github.com/sagabooks/saga/pkg/models"
	"github.com/sagabooks/saga/pkg/sortname"
)

type ListSeriesOptions struct {
	MissingDescription bool
}

type UpdateSeriesOptions struct {
	Columns []string
}

func (svc *Service) RetrieveSeries(ctx context.Context, id string) (*models.Series, error) {
	series := &models.Series{}

	err := svc.db.
		NewSelect().
		Model(series).
		Where("s.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Series")
		}
		return nil, errors.WithStack(err)
	}

	return series, nil
}

func (svc *Service) InsertSeries(ctx context.Context, series *models.Series) error {
	now := time.Now()
	if series.CreatedAt.IsZero() {
		series.CreatedAt = now
	}
	series.UpdatedAt = series.CreatedAt
	if series.SortName == "" {
		series.SortName = sortname.ForTitle(series.Name)
	}

	_, err := svc.db.
		NewInsert().
		Model(series).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) UpdateSeries(ctx context.Context, series *models.Series, opts UpdateSeriesOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	series.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(series).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Series")
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) ListSeries(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, error) {
	series := []*models.Series{}

	q := svc.db.
		NewSelect().
		Model(&series).
		Order("s.sort_name ASC", "s.name ASC")

	if opts.MissingDescription {
		q = q.Where("s.description IS NULL")
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return series, nil
}

// LinkBookToSeries ensures a (book, series) relation tuple exists. The
// volume label is refreshed on conflict since rescrapes occasionally carry
// a better one.
func (svc *Service) LinkBookToSeries(ctx context.Context, bookID, seriesID, volume string) error {
	link := &models.BookSeries{
		BookID:   bookID,
		SeriesID: seriesID,
		Volume:   volume,
	}

	_, err := svc.db.
		NewInsert().
		Model(link).
		On("CONFLICT (book_id, series_id) DO UPDATE").
		Set("volume = EXCLUDED.volume").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
