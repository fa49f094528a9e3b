package goodreads

import (
	"context"
	"fmt"
	"strings"

	"github.com/sagabooks/saga/pkg/lookup"
)

// Search runs one search query and parses the result rows. The search form
// has a single unfielded box, so every query kind lands on the same URL.
// Each row's title cell folds the series label into the text ("The Final
// Empire (Mistborn, #1)"), so the label is split back out into the
// candidate's series fields.
func (s *Source) Search(ctx context.Context, query lookup.Query, page int) (*lookup.Page, error) {
	url := fmt.Sprintf("%s/search?utf8=%%E2%%9C%%93&query=%s", s.baseURL, query.Text)
	if page > 1 {
		url = fmt.Sprintf("%s&page=%d", url, page)
	}

	doc, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	result := &lookup.Page{}

	for _, row := range findAll(doc, byAttrPresent("tr", "itemscope")) {
		titleNode := findOne(row, byClass("a", "bookTitle"))
		if titleNode == nil {
			continue
		}

		candidate := lookup.Candidate{
			Link: s.baseURL + attrVal(titleNode, "href"),
		}
		candidate.Title, candidate.SeriesTitle, candidate.SeriesVolume = parseResultTitle(strings.TrimSpace(nodeText(titleNode)))

		for _, a := range findAll(row, byClass("a", "authorName")) {
			candidate.Authors = append(candidate.Authors, strings.TrimSpace(nodeText(a)))
		}

		result.Candidates = append(result.Candidates, candidate)
	}

	result.More = findOne(doc, byClass("a", "next_page")) != nil

	return result, nil
}

// parseResultTitle splits a result-row title into the book title and the
// "(Series, #N)" label appended to it, when one is present. A title that
// merely starts with a parenthesized qualifier has that qualifier blanked
// first so it isn't mistaken for a series label.
func parseResultTitle(raw string) (title, seriesTitle, seriesVolume string) {
	if strings.HasPrefix(raw, "(") {
		if end := strings.IndexByte(raw, ')'); end > 0 {
			raw = " " + raw[1:end] + " " + raw[end+1:]
		}
	}

	open := strings.IndexByte(raw, '(')
	if open < 0 {
		return strings.TrimSpace(raw), "", ""
	}

	title = strings.TrimSpace(raw[:open])

	label := strings.ReplaceAll(raw[open+1:], ")", "")
	parts := strings.SplitN(label, "#", 2)

	seriesTitle = strings.TrimSpace(strings.ReplaceAll(parts[0], ",", ""))
	if len(parts) > 1 {
		seriesVolume = strings.TrimSpace(parts[1])
	}

	return title, seriesTitle, seriesVolume
}
