// Package googlebooks resolves books against the Google Books volumes API.
// It supports search and detail resolution only; the API has no series or
// author-bio surface, so those workflows skip this source.
package googlebooks

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sagabooks/saga/pkg/config"
	"github.com/sagabooks/saga/pkg/htmlutil"
	"github.com/sagabooks/saga/pkg/lookup"
	"github.com/sagabooks/saga/pkg/models"
	"github.com/segmentio/encoding/json"
)

// pageSize matches the API's maxResults cap for a single request.
const pageSize = 20

type Source struct {
	baseURL       string
	userAgent     string
	client        *http.Client
	rand          *rand.Rand
	delayMin      time.Duration
	delayMax      time.Duration
	searchRetries int
}

func New(cfg *config.Config, rnd *rand.Rand) *Source {
	return &Source{
		baseURL:       cfg.GoogleBooksBaseURL,
		userAgent:     cfg.UserAgent,
		client:        &http.Client{Timeout: cfg.HTTPTimeout},
		rand:          rnd,
		delayMin:      cfg.SearchDelayMin,
		delayMax:      cfg.SearchDelayMax,
		searchRetries: cfg.SearchRetryCount,
	}
}

func (s *Source) Name() string {
	return "googlebooks"
}

type volumeInfo struct {
	Title               string   `json:"title"`
	Subtitle            string   `json:"subtitle"`
	Authors             []string `json:"authors"`
	Description         string   `json:"description"`
	Categories          []string `json:"categories"`
	CanonicalVolumeLink string   `json:"canonicalVolumeLink"`
	ImageLinks          struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

type volume struct {
	ID         string     `json:"id"`
	SelfLink   string     `json:"selfLink"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type searchResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

// Search runs one paginated volumes query. The API signals the end of the
// result set with a page carrying no items, so More stays true as long as
// the current page had any.
func (s *Source) Search(ctx context.Context, query lookup.Query, page int) (*lookup.Page, error) {
	q := query.Text
	// The volumes API has fielded search syntax; scoping author queries
	// keeps a name from matching against titles.
	if query.Kind == lookup.QueryAuthor {
		q = "inauthor:" + q
	}
	url := fmt.Sprintf("%s?q=%s&startIndex=%d&maxResults=%d", s.baseURL, q, (page-1)*pageSize, pageSize)

	response := searchResponse{}
	if err := s.fetch(ctx, url, &response); err != nil {
		return nil, err
	}

	result := &lookup.Page{More: len(response.Items) > 0}
	for _, item := range response.Items {
		result.Candidates = append(result.Candidates, lookup.Candidate{
			Title:   item.VolumeInfo.Title,
			Authors: item.VolumeInfo.Authors,
			Link:    item.SelfLink,
		})
	}

	return result, nil
}

// ResolveBook fetches a single volume resource by its self link.
func (s *Source) ResolveBook(ctx context.Context, link string) (*lookup.ResolvedBook, error) {
	item := volume{}
	if err := s.fetch(ctx, link, &item); err != nil {
		return nil, err
	}
	if item.VolumeInfo.Title == "" {
		return nil, errors.Errorf("volume has no title: %s", link)
	}

	resolved := &lookup.ResolvedBook{
		Title: item.VolumeInfo.Title,
		// Volume descriptions arrive with embedded markup.
		Description:    htmlutil.StripTags(item.VolumeInfo.Description),
		Link:           item.VolumeInfo.CanonicalVolumeLink,
		CoverImageLink: item.VolumeInfo.ImageLinks.Thumbnail,
		Genres:         item.VolumeInfo.Categories,
	}
	if resolved.Link == "" {
		resolved.Link = item.SelfLink
	}

	// The API credits contributors as bare author names with no role
	// annotations.
	for _, name := range item.VolumeInfo.Authors {
		resolved.Contributors = append(resolved.Contributors, lookup.Contributor{
			Name: name,
			Role: models.RoleAuthor,
		})
	}

	return resolved, nil
}

func (s *Source) fetch(ctx context.Context, url string, out interface{}) error {
	s.sleep(ctx)

	var lastErr error
	for i := 0; i < s.searchRetries; i++ {
		if err := s.fetchOnce(ctx, url, out); err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return nil
	}

	return lastErr
}

func (s *Source) fetchOnce(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("google books returned %d for %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WithStack(err)
	}

	return nil
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
