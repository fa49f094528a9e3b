// Package goodreads resolves books against Goodreads by scraping its search
// results, book pages, series pages, and author pages.
package goodreads

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sagabooks/saga/pkg/config"
	"golang.org/x/net/html"
)

// Source scrapes Goodreads. The rand source drives the politeness jitter
// slept before every request and is injected so tests can run with zero
// delay and deterministic timing.
type Source struct {
	baseURL       string
	userAgent     string
	client        *http.Client
	rand          *rand.Rand
	delayMin      time.Duration
	delayMax      time.Duration
	searchRetries int
	detailRetries int
}

func New(cfg *config.Config, rnd *rand.Rand) *Source {
	return &Source{
		baseURL:       cfg.GoodreadsBaseURL,
		userAgent:     cfg.UserAgent,
		client:        &http.Client{Timeout: cfg.HTTPTimeout},
		rand:          rnd,
		delayMin:      cfg.SearchDelayMin,
		delayMax:      cfg.SearchDelayMax,
		searchRetries: cfg.SearchRetryCount,
		detailRetries: cfg.DetailRetryCount,
	}
}

func (s *Source) Name() string {
	return "goodreads"
}

// fetch sleeps the jitter delay once, then tries the request up to the
// transport retry budget. There is no backoff between attempts; the budget
// exists to ride out connection blips, not outages.
func (s *Source) fetch(ctx context.Context, url string) (*html.Node, error) {
	s.sleep(ctx)

	var lastErr error
	for i := 0; i < s.searchRetries; i++ {
		doc, err := s.fetchOnce(ctx, url)
		if err == nil {
			return doc, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

func (s *Source) fetchOnce(ctx context.Context, url string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("goodreads returned %d for %s", resp.StatusCode, url)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return doc, nil
}

func (s *Source) sleep(ctx context.Context) {
	if s.delayMax <= s.delayMin {
		return
	}

	delay := s.delayMin + time.Duration(s.rand.Int63n(int64(s.delayMax-s.delayMin)))
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}
