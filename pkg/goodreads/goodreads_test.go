package goodreads

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/robinjoseph08/golib/logger"
	"github.com/sagabooks/saga/pkg/config"
	"github.com/sagabooks/saga/pkg/lookup"
	"github.com/sagabooks/saga/pkg/models"
	"github.com/stretchr/testify/require"
)

const searchHTML = `<html><body><table>
<tr itemscope itemtype="http://schema.org/Book"><td>
  <a class="bookTitle" href="/book/show/68428.The_Final_Empire"><span>The Final Empire (Mistborn, #1)</span></a>
  <a class="authorName" href="/author/show/38550"><span>Brandon Sanderson</span></a>
</td></tr>
<tr itemscope itemtype="http://schema.org/Book"><td>
  <a class="bookTitle" href="/book/show/68427.Elantris"><span>Elantris</span></a>
  <a class="authorName" href="/author/show/38550"><span>Brandon Sanderson</span></a>
  <a class="authorName" href="/author/show/99"><span>Jack Narrator</span></a>
</td></tr>
</table>
<a class="next_page" href="/search?page=2">next</a>
</body></html>`

const bookHTML = `<html><body>
<div class="BookPage__leftColumn">
  <img class="ResponsiveImage" src="https://images.example.com/68428.jpg"/>
</div>
<div class="BookPage__rightColumn">
  <h1 class="Text Text__title1">The Final Empire</h1>
  <div class="ContributorLinksList"><a href="/author/show/38550">Brandon Sanderson</a></div>
  <div class="ContributorLinksList"><a href="/author/show/77">Michael Kramer</a> (Narrator)</div>
  <h2 id="bookSeries"><a href="/series/40910-mistborn">(Mistborn, #1)</a></h2>
  <div id="descriptionContainer"><div id="description">
    <span>Teaser only.</span>
    <span>What if the Dark Lord <b>won</b>?</span>
  </div></div>
  <div class="stacked">
    <div class="elementList"><div class="left"><a href="/genres/fantasy">Fantasy</a></div></div>
    <div class="elementList"><div class="left"><a href="/genres/fiction">Fiction</a></div></div>
    <div class="elementList"><div class="left"><a href="/genres/fantasy">Fantasy</a></div></div>
  </div>
</div>
</body></html>`

const seriesHTML = `<html><body>
<div data-react-class="ReactComponents.SeriesHeader" data-react-props="{&quot;title&quot;:&quot;Mistborn&quot;,&quot;description&quot;:{&quot;html&quot;:&quot;The original trilogy.&quot;}}"></div>
<div data-react-class="ReactComponents.SeriesList" data-react-props="{&quot;series&quot;:[{&quot;book&quot;:{&quot;title&quot;:&quot;The Final Empire (Mistborn, #1)&quot;,&quot;bookUrl&quot;:&quot;/book/show/68428&quot;,&quot;imageUrl&quot;:&quot;https://images.example.com/68428.jpg&quot;}},{&quot;book&quot;:{&quot;title&quot;:&quot;The Well of Ascension (Mistborn, #2)&quot;,&quot;bookUrl&quot;:&quot;/book/show/68429&quot;,&quot;imageUrl&quot;:&quot;https://images.example.com/68429.jpg&quot;}}],&quot;seriesHeaders&quot;:[&quot;Book 1&quot;,&quot;Book 2&quot;]}"></div>
</body></html>`

const authorHTML = `<html><body>
<div class="leftContainer authorLeftContainer">
  <img src="https://images.example.com/author38550.jpg"/>
</div>
<div class="rightContainer">
  <h1 class="authorName"><span itemprop="name">Brandon Sanderson</span></h1>
  <div class="dataTitle">Born</div>
  <div class="dataItem">in Lincoln, Nebraska, The United States</div>
  <div class="dataTitle">Website</div>
  <div class="dataItem">https://www.brandonsanderson.com</div>
  <div class="dataTitle">Genre</div>
  <div class="dataItem">Fantasy, Science Fiction</div>
  <div class="dataTitle">Member Since</div>
  <div class="dataItem">August 2008</div>
  <div class="dataTitle">Favorite Snack</div>
  <div class="dataItem">popcorn</div>
  <div class="aboutAuthorInfo">
    <span id="freeTextContainerauthor123">Short teaser.</span>
    <span id="freeText456">Writes <i>fast</i>.</span>
  </div>
</div>
</body></html>`

func newTestSource(t *testing.T, handler http.Handler) *Source {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		GoodreadsBaseURL: srv.URL,
		HTTPTimeout:      5 * time.Second,
		UserAgent:        "saga-importer",
		SearchRetryCount: 3,
		DetailRetryCount: 3,
	}

	return New(cfg, rand.New(rand.NewSource(1)))
}

func fixtureHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchHTML))
	})
	mux.HandleFunc("/book/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bookHTML))
	})
	mux.HandleFunc("/series/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(seriesHTML))
	})
	mux.HandleFunc("/author/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(authorHTML))
	})
	return mux
}

func TestSearch(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, fixtureHandler())
	page, err := source.Search(context.Background(), lookup.Query{Text: "Mistborn", Kind: lookup.QueryTitle}, 1)
	require.NoError(t, err)
	require.Len(t, page.Candidates, 2)
	require.True(t, page.More)

	first := page.Candidates[0]
	require.Equal(t, "The Final Empire", first.Title)
	require.Equal(t, "Mistborn", first.SeriesTitle)
	require.Equal(t, "1", first.SeriesVolume)
	require.Equal(t, []string{"Brandon Sanderson"}, first.Authors)
	require.Contains(t, first.Link, "/book/show/68428")

	second := page.Candidates[1]
	require.Equal(t, "Elantris", second.Title)
	require.Empty(t, second.SeriesTitle)
	require.Len(t, second.Authors, 2)
}

func TestSearchRetriesTransportFailures(t *testing.T) {
	t.Parallel()

	attempts := 0
	source := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(searchHTML))
	}))

	page, err := source.Search(context.Background(), lookup.Query{Text: "Mistborn", Kind: lookup.QueryTitle}, 1)
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
	require.Len(t, page.Candidates, 2)
}

func TestSearchExhaustsRetries(t *testing.T) {
	t.Parallel()

	attempts := 0
	source := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := source.Search(context.Background(), lookup.Query{Text: "Mistborn", Kind: lookup.QueryTitle}, 1)
	require.Error(t, err)
	require.Equal(t, 3, attempts)
}

func TestResolveBook(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, fixtureHandler())
	resolved, err := source.ResolveBook(context.Background(), source.baseURL+"/book/show/68428?from_search=true")
	require.NoError(t, err)

	require.Equal(t, "The Final Empire", resolved.Title)
	require.Equal(t, source.baseURL+"/book/show/68428", resolved.Link)
	require.Equal(t, "https://images.example.com/68428.jpg", resolved.CoverImageLink)
	require.Equal(t, "What if the Dark Lord <b>won</b>?", resolved.Description)
	require.Equal(t, "Mistborn", resolved.SeriesTitle)
	require.Equal(t, "1", resolved.SeriesVolume)
	require.Equal(t, source.baseURL+"/series/40910-mistborn", resolved.SeriesLink)
	require.Equal(t, []string{"Fantasy", "Fiction"}, resolved.Genres)

	require.Len(t, resolved.Contributors, 2)
	require.Equal(t, "Brandon Sanderson", resolved.Contributors[0].Name)
	require.Equal(t, models.RoleAuthor, resolved.Contributors[0].Role)
	require.Equal(t, "Michael Kramer", resolved.Contributors[1].Name)
	require.Equal(t, models.RoleNarrator, resolved.Contributors[1].Role)
}

func TestResolveBookRetriesStructuralFailures(t *testing.T) {
	t.Parallel()

	attempts := 0
	source := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			// A successful response without the content columns.
			w.Write([]byte("<html><body><div>loading</div></body></html>"))
			return
		}
		w.Write([]byte(bookHTML))
	}))

	resolved, err := source.ResolveBook(context.Background(), source.baseURL+"/book/show/68428")
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
	require.Equal(t, "The Final Empire", resolved.Title)
}

func TestResolveBookGivesUp(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body></body></html>"))
	}))

	_, err := source.ResolveBook(context.Background(), source.baseURL+"/book/show/68428")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing content columns")
}

func TestResolveBookStopsRetryingOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	source := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		cancel()
		// A successful response without the content columns would normally
		// trigger another attempt.
		w.Write([]byte("<html><body><div>loading</div></body></html>"))
	}))

	_, err := source.ResolveBook(ctx, source.baseURL+"/book/show/68428")
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestResolveSeries(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, fixtureHandler())
	resolved, err := source.ResolveSeries(context.Background(), source.baseURL+"/series/40910-mistborn")
	require.NoError(t, err)

	require.Equal(t, "Mistborn", resolved.Title)
	require.Equal(t, "The original trilogy.", resolved.Description)
	require.Len(t, resolved.Books, 2)
	require.Equal(t, "The Final Empire", resolved.Books[0].Title)
	require.Equal(t, source.baseURL+"/book/show/68428", resolved.Books[0].Link)
	require.Equal(t, "1", resolved.Books[0].Volume)
	require.Equal(t, "2", resolved.Books[1].Volume)
}

func TestResolveAuthor(t *testing.T) {
	t.Parallel()

	ctx := logger.New().WithContext(context.Background())
	source := newTestSource(t, fixtureHandler())

	resolved, err := source.ResolveAuthor(ctx, source.baseURL+"/author/show/38550")
	require.NoError(t, err)

	require.Equal(t, "Brandon Sanderson", resolved.Name)
	require.Equal(t, "https://images.example.com/author38550.jpg", resolved.ImageLink)
	require.Equal(t, "in Lincoln, Nebraska, The United States", resolved.BornDate)
	require.Equal(t, "https://www.brandonsanderson.com", resolved.Website)
	require.Equal(t, "Fantasy, Science Fiction", resolved.GenreTags)
	require.Empty(t, resolved.DiedDate)
	require.Equal(t, "Writes <i>fast</i>.", resolved.About)
}

func TestParseResultTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		title  string
		series string
		volume string
	}{
		{"The Final Empire (Mistborn, #1)", "The Final Empire", "Mistborn", "1"},
		{"Elantris", "Elantris", "", ""},
		{"Sourcery (Discworld, #5; Rincewind #3)", "Sourcery", "Discworld", "5; Rincewind #3"},
		{"Dawnshard (The Stormlight Archive, #3.5)", "Dawnshard", "The Stormlight Archive", "3.5"},
	}

	for _, test := range tests {
		title, series, volume := parseResultTitle(test.raw)
		require.Equal(t, test.title, title, test.raw)
		require.Equal(t, test.series, series, test.raw)
		require.Equal(t, test.volume, volume, test.raw)
	}
}
