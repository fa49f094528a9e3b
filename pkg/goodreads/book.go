package goodreads

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sagabooks/saga/pkg/lookup"
	"github.com/sagabooks/saga/pkg/models"
	"golang.org/x/net/html"
)

// ResolveBook fetches and maps a book page. Goodreads intermittently serves
// the page without its content columns, so the whole fetch is retried
// against the detail budget until both columns show up.
func (s *Source) ResolveBook(ctx context.Context, link string) (*lookup.ResolvedBook, error) {
	var doc *html.Node

	for i := 0; i < s.detailRetries; i++ {
		page, err := s.fetch(ctx, link)
		if err == nil {
			left := findOne(page, byClass("div", "BookPage__leftColumn"))
			right := findOne(page, byClass("div", "BookPage__rightColumn"))
			if left != nil && right != nil {
				doc = page
				break
			}
		}

		if ctx.Err() != nil {
			break
		}
	}

	if doc == nil {
		return nil, errors.Errorf("book page missing content columns: %s", link)
	}

	resolved := &lookup.ResolvedBook{
		Link:         strings.TrimSpace(strings.SplitN(link, "?", 2)[0]),
		Contributors: parseContributors(doc),
		Genres:       parseGenres(doc),
	}

	if node := findOne(doc, byClass("h1", "Text Text__title1")); node != nil {
		resolved.Title = strings.TrimSpace(nodeText(node))
	}
	if node := findOne(doc, byClass("img", "ResponsiveImage")); node != nil {
		resolved.CoverImageLink = attrVal(node, "src")
	}

	if series := findOne(doc, byAttr("h2", "id", "bookSeries")); series != nil {
		if a := findOne(series, func(n *html.Node) bool { return n.Data == "a" }); a != nil {
			resolved.SeriesTitle, resolved.SeriesVolume = parseSeriesLabel(strings.TrimSpace(nodeText(a)))
			resolved.SeriesLink = s.baseURL + attrVal(a, "href")
		}
	}

	resolved.Description = parseDescription(doc)

	return resolved, nil
}

// parseDescription prefers the second description fragment when there are
// two; the first is a truncated teaser.
func parseDescription(doc *html.Node) string {
	container := findOne(doc, byAttr("div", "id", "descriptionContainer"))
	if container == nil {
		return ""
	}
	description := findOne(container, byAttr("div", "id", "description"))
	if description == nil {
		return ""
	}

	spans := findAll(description, func(n *html.Node) bool { return n.Data == "span" })
	if len(spans) > 1 {
		return innerHTML(spans[1])
	}
	if len(spans) == 1 {
		return innerHTML(spans[0])
	}
	return ""
}

func parseGenres(doc *html.Node) []string {
	genres := []string{}
	seen := map[string]struct{}{}

	for _, stacked := range findAll(doc, byClass("div", "stacked")) {
		for _, element := range findAll(stacked, byClassContains("div", "elementList")) {
			left := findOne(element, byClass("div", "left"))
			if left == nil {
				continue
			}
			for _, a := range findAll(left, func(n *html.Node) bool { return n.Data == "a" }) {
				name := strings.TrimSpace(nodeText(a))
				if name == "" {
					continue
				}
				if _, ok := seen[name]; ok {
					continue
				}
				seen[name] = struct{}{}
				genres = append(genres, name)
			}
		}
	}

	return genres
}

func parseContributors(doc *html.Node) []lookup.Contributor {
	contributors := []lookup.Contributor{}

	for _, div := range findAll(doc, byClassContains("div", "ContributorLinksList")) {
		text := strings.TrimSpace(strings.ReplaceAll(nodeText(div), ",", " "))
		name, annotation := splitContributorAnnotation(text)
		if name == "" {
			continue
		}

		link := ""
		if a := findOne(div, func(n *html.Node) bool { return n.Data == "a" }); a != nil {
			link = attrVal(a, "href")
		}

		contributors = append(contributors, lookup.Contributor{
			Name: name,
			Role: models.ClassifyRole(annotation),
			Link: link,
		})
	}

	// Books with long contributor lists tuck the overflow into a hidden
	// toggle section.
	for _, span := range findAll(doc, byClass("span", "toggleContent")) {
		for _, a := range findAll(span, byClass("a", "authorName")) {
			annotation := ""
			if sibling := nextElementSibling(a); sibling != nil && sibling.Data == "span" {
				annotation = nodeText(sibling)
			}

			contributors = append(contributors, lookup.Contributor{
				Name: strings.TrimSpace(nodeText(a)),
				Role: models.ClassifyRole(annotation),
				Link: attrVal(a, "href"),
			})
		}
	}

	return contributors
}

// splitContributorAnnotation separates "Jane Doe (Translator)" into the
// name and the parenthesized role annotation.
func splitContributorAnnotation(text string) (name, annotation string) {
	open := strings.IndexByte(text, '(')
	if open < 0 {
		return strings.TrimSpace(text), ""
	}
	return strings.TrimSpace(text[:open]), text[open:]
}

// parseSeriesLabel splits a "Name, #N" series label into its name and
// volume parts.
func parseSeriesLabel(label string) (name, volume string) {
	label = strings.NewReplacer("(", " ", ")", " ", ",", " ").Replace(label)
	parts := strings.SplitN(label, "#", 2)

	name = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		volume = strings.TrimSpace(parts[1])
	}
	return name, volume
}
