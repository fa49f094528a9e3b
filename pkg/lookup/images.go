package lookup

import (
	"context"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/sagabooks/saga/pkg/catalog"
	"github.com/sagabooks/saga/pkg/errcodes"
	"github.com/sagabooks/saga/pkg/models"
)

// MirrorImages downloads every resolved cover and author portrait that
// isn't stored locally yet. The source occasionally rotates its CDN URLs,
// so mirroring once keeps the catalog usable offline.
func (p *Processor) MirrorImages(ctx context.Context) error {
	client := &http.Client{Timeout: p.cfg.HTTPTimeout}
	log := logger.FromContext(ctx)

	state := models.FetchStateTriedSuccess
	books, err := p.catalog.ListBooks(ctx, catalog.ListBooksOptions{FetchState: &state})
	if err != nil {
		return err
	}
	for _, book := range books {
		if book.LookupCoverImage == nil {
			continue
		}
		if err := p.mirrorImage(ctx, client, book.ID, *book.LookupCoverImage); err != nil {
			return err
		}
	}

	linked := true
	authors, err := p.catalog.ListAuthors(ctx, catalog.ListAuthorsOptions{SourceLinked: &linked})
	if err != nil {
		return err
	}
	for _, author := range authors {
		if author.ImageLink == nil {
			continue
		}
		if err := p.mirrorImage(ctx, client, author.ID, *author.ImageLink); err != nil {
			return err
		}
	}

	log.Info("mirrored images", logger.Data{"books": len(books), "authors": len(authors)})

	return nil
}

func (p *Processor) mirrorImage(ctx context.Context, client *http.Client, id, link string) error {
	_, err := p.catalog.RetrieveImage(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errcodes.NotFound("Image")) {
		return err
	}

	log := logger.FromContext(ctx).Data(logger.Data{"id": id, "link": link})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		log.Warn("bad image link", logger.Data{"error": err.Error()})
		return nil
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		log.Warn("image download failed", logger.Data{"error": err.Error()})
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("image download failed", logger.Data{"status": resp.StatusCode})
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("image download failed", logger.Data{"error": err.Error()})
		return nil
	}

	return p.catalog.UpsertImage(ctx, &models.Image{
		ID:          id,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	})
}
