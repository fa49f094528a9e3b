// Package catalog is the persistence service for the book graph: books,
// authors, series, genres, their relation tables, and mirrored images.
// Every write is an idempotent per-entity upsert; re-running a merge with
// the same resolved data leaves the catalog unchanged.
package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/sagabooks/saga/pkg/errcodes"
	"github.com/sagabooks/saga/pkg/models"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	// Register the m2m join models so relation queries can traverse them.
	db.RegisterModel((*models.BookAuthor)(nil), (*models.BookGenre)(nil), (*models.BookSeries)(nil))
	return &Service{db}
}

type RetrieveBookOptions struct {
	ID         *string
	LookupLink *string
}

type ListBooksOptions struct {
	FetchState *string
	LookupLink *string
}

type UpdateBookOptions struct {
	Columns []string
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt
	if book.FetchState == "" {
		book.FetchState = models.FetchStateNotTried
	}

	_, err := svc.db.
		NewInsert().
		Model(book).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book)

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.LookupLink != nil {
		q = q.Where("b.lookup_link = ?", *opts.LookupLink)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// ListBooks returns books ordered by id, which is a content hash, so batch
// processing order is stable but unrelated to titles.
func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	q := svc.db.
		NewSelect().
		Model(&books).
		Order("b.id ASC")

	if opts.FetchState != nil {
		q = q.Where("b.fetch_state = ?", *opts.FetchState)
	}
	if opts.LookupLink != nil {
		q = q.Where("b.lookup_link = ?", *opts.LookupLink)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	book.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(book).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Book")
		}
		return errors.WithStack(err)
	}

	return nil
}
