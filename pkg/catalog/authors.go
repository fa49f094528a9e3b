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

type ListAuthorsOptions struct {
	BookID       *string
	SourceLinked *bool
}

type UpdateAuthorOptions struct {
	Columns []string
}

func (svc *Service) RetrieveAuthor(ctx context.Context, id string) (*models.Author, error) {
	author := &models.Author{}

	err := svc.db.
		NewSelect().
		Model(author).
		Where("a.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Author")
		}
		return nil, errors.WithStack(err)
	}

	return author, nil
}

func (svc *Service) InsertAuthor(ctx context.Context, author *models.Author) error {
	now := time.Now()
	if author.CreatedAt.IsZero() {
		author.CreatedAt = now
	}
	author.UpdatedAt = author.CreatedAt
	if author.SortName == "" {
		author.SortName = sortname.ForPerson(author.Name)
	}

	_, err := svc.db.
		NewInsert().
		Model(author).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) UpdateAuthor(ctx context.Context, author *models.Author, opts UpdateAuthorOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	author.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(author).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Author")
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) ListAuthors(ctx context.Context, opts ListAuthorsOptions) ([]*models.Author, error) {
	authors := []*models.Author{}

	q := svc.db.
		NewSelect().
		Model(&authors).
		Order("a.sort_name ASC", "a.name ASC")

	if opts.BookID != nil {
		// Distinct because an author can be linked to a book under more
		// than one role.
		q = q.
			Distinct().
			Join("JOIN book_authors AS ba ON ba.author_id = a.id").
			Where("ba.book_id = ?", *opts.BookID)
	}
	if opts.SourceLinked != nil {
		q = q.Where("a.source_linked = ?", *opts.SourceLinked)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return authors, nil
}

// LinkBookToAuthor ensures a (book, author, role) relation tuple exists.
// Relinking an existing tuple is a no-op.
func (svc *Service) LinkBookToAuthor(ctx context.Context, bookID, authorID, role string) error {
	link := &models.BookAuthor{
		BookID:   bookID,
		AuthorID: authorID,
		Role:     role,
	}

	_, err := svc.db.
		NewInsert().
		Model(link).
		On("CONFLICT (book_id, author_id, role) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
