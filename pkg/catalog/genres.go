package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/sagabooks/saga/pkg/errcodes"
	"github.com/sagabooks/saga/pkg/models"
)

func (svc *Service) RetrieveGenre(ctx context.Context, id string) (*models.Genre, error) {
	genre := &models.Genre{}

	err := svc.db.
		NewSelect().
		Model(genre).
		Where("g.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Genre")
		}
		return nil, errors.WithStack(err)
	}

	return genre, nil
}

func (svc *Service) InsertGenre(ctx context.Context, genre *models.Genre) error {
	now := time.Now()
	if genre.CreatedAt.IsZero() {
		genre.CreatedAt = now
	}
	genre.UpdatedAt = genre.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(genre).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// LinkBookToGenre ensures a (book, genre) relation tuple exists.
func (svc *Service) LinkBookToGenre(ctx context.Context, bookID, genreID string) error {
	link := &models.BookGenre{
		BookID:  bookID,
		GenreID: genreID,
	}

	_, err := svc.db.
		NewInsert().
		Model(link).
		On("CONFLICT (book_id, genre_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
