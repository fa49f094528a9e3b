package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/sagabooks/saga/pkg/catalog"
	"github.com/sagabooks/saga/pkg/models"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

func TestMirrorImages(t *testing.T) {
	t.Parallel()
	ctx := logger.New().WithContext(context.Background())

	var hits int64
	mux := http.NewServeMux()
	mux.HandleFunc("/cover.png", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&hits, 1)
		_, _ = w.Write(pngHeader)
	})
	mux.HandleFunc("/missing.jpg", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	proc, store, _ := setupProcessor(t, &fakeSource{})
	proc.cfg.HTTPTimeout = 5 * time.Second
	proc.cfg.UserAgent = "saga-importer"

	seedBook(t, store, "B1", "Mistborn", "Brandon Sanderson")
	book, err := store.RetrieveBook(ctx, catalog.RetrieveBookOptions{ID: pointerutil.String("B1")})
	require.NoError(t, err)
	book.FetchState = models.FetchStateTriedSuccess
	book.LookupCoverImage = pointerutil.String(srv.URL + "/cover.png")
	require.NoError(t, store.UpdateBook(ctx, book, catalog.UpdateBookOptions{
		Columns: []string{"fetch_state", "lookup_cover_image"},
	}))

	// A broken portrait link is logged and skipped, not fatal.
	require.NoError(t, store.InsertAuthor(ctx, &models.Author{
		ID:           "A1",
		Name:         "Brandon Sanderson",
		Role:         models.RoleAuthor,
		SourceLinked: true,
		Link:         pointerutil.String("https://example.com/author/38550"),
		ImageLink:    pointerutil.String(srv.URL + "/missing.jpg"),
	}))

	require.NoError(t, proc.MirrorImages(ctx))

	image, err := store.RetrieveImage(ctx, "B1")
	require.NoError(t, err)
	require.Equal(t, "image/png", image.ContentType)
	require.Equal(t, pngHeader, image.Data)

	_, err = store.RetrieveImage(ctx, "A1")
	require.EqualError(t, err, "Image not found.")

	// A second run sees the stored cover and does not refetch it.
	require.NoError(t, proc.MirrorImages(ctx))
	require.Equal(t, int64(1), atomic.LoadInt64(&hits))
}
