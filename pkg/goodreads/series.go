package goodreads

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sagabooks/saga/pkg/lookup"
	"github.com/segmentio/encoding/json"
)

// Series pages embed their data as JSON props on React mount points rather
// than rendered markup.
type seriesHeaderProps struct {
	Title       string `json:"title"`
	Description struct {
		HTML string `json:"html"`
	} `json:"description"`
}

type seriesListProps struct {
	Series []struct {
		Book struct {
			Title    string `json:"title"`
			BookURL  string `json:"bookUrl"`
			ImageURL string `json:"imageUrl"`
		} `json:"book"`
	} `json:"series"`
	SeriesHeaders []string `json:"seriesHeaders"`
}

// ResolveSeries fetches a series page and maps its title, description, and
// member books. The volume label comes from the "Book N" position header
// when one is present.
func (s *Source) ResolveSeries(ctx context.Context, link string) (*lookup.ResolvedSeries, error) {
	doc, err := s.fetch(ctx, link)
	if err != nil {
		return nil, err
	}

	headerNode := findOne(doc, byAttr("div", "data-react-class", "ReactComponents.SeriesHeader"))
	if headerNode == nil {
		return nil, errors.Errorf("series page missing header: %s", link)
	}

	header := seriesHeaderProps{}
	if err := json.Unmarshal([]byte(attrVal(headerNode, "data-react-props")), &header); err != nil {
		return nil, errors.WithStack(err)
	}

	resolved := &lookup.ResolvedSeries{
		Title:       header.Title,
		Description: header.Description.HTML,
	}

	for _, listNode := range findAll(doc, byAttr("div", "data-react-class", "ReactComponents.SeriesList")) {
		list := seriesListProps{}
		if err := json.Unmarshal([]byte(attrVal(listNode, "data-react-props")), &list); err != nil {
			return nil, errors.WithStack(err)
		}

		for i, entry := range list.Series {
			volume := ""
			if i < len(list.SeriesHeaders) {
				volume = strings.TrimSpace(strings.ReplaceAll(list.SeriesHeaders[i], "Book", " "))
			}

			resolved.Books = append(resolved.Books, lookup.SeriesBook{
				Title:     strings.TrimSpace(strings.SplitN(entry.Book.Title, "(", 2)[0]),
				Link:      s.baseURL + entry.Book.BookURL,
				ImageLink: entry.Book.ImageURL,
				Volume:    volume,
			})
		}
	}

	return resolved, nil
}
