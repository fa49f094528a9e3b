package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/sagabooks/saga/pkg/errcodes"
	"github.com/sagabooks/saga/pkg/models"
)

func (svc *Service) RetrieveImage(ctx context.Context, id string) (*models.Image, error) {
	image := &models.Image{}

	err := svc.db.
		NewSelect().
		Model(image).
		Where("i.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Image")
		}
		return nil, errors.WithStack(err)
	}

	return image, nil
}

// UpsertImage stores image bytes under the owning entity's id, replacing
// any previous copy.
func (svc *Service) UpsertImage(ctx context.Context, image *models.Image) error {
	image.UpdatedAt = time.Now()

	_, err := svc.db.
		NewInsert().
		Model(image).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("content_type = EXCLUDED.content_type").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
