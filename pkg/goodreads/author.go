package goodreads

import (
	"context"
	"strings"

	"github.com/robinjoseph08/golib/logger"
	"github.com/sagabooks/saga/pkg/lookup"
	"golang.org/x/net/html"
)

// Author bio pages label each fact with a data title ("Born", "Website")
// followed by the value in the next element. The known labels are
// enumerated here; anything new gets a diagnostic instead of a silent drop.
var authorFieldAssign = map[string]func(*lookup.ResolvedAuthor, string){
	"born":       func(a *lookup.ResolvedAuthor, v string) { a.BornDate = v },
	"died":       func(a *lookup.ResolvedAuthor, v string) { a.DiedDate = v },
	"genre":      func(a *lookup.ResolvedAuthor, v string) { a.GenreTags = v },
	"website":    func(a *lookup.ResolvedAuthor, v string) { a.Website = v },
	"influences": func(a *lookup.ResolvedAuthor, v string) { a.Influences = v },
	"twitter":    func(a *lookup.ResolvedAuthor, v string) { a.Twitter = v },

	// Present on every page, intentionally ignored.
	"url":          func(a *lookup.ResolvedAuthor, v string) {},
	"member since": func(a *lookup.ResolvedAuthor, v string) {},
}

// ResolveAuthor fetches and maps an author bio page.
func (s *Source) ResolveAuthor(ctx context.Context, link string) (*lookup.ResolvedAuthor, error) {
	doc, err := s.fetch(ctx, link)
	if err != nil {
		return nil, err
	}

	resolved := &lookup.ResolvedAuthor{}

	if name := findOne(doc, byClassContains("h1", "authorName")); name != nil {
		resolved.Name = strings.TrimSpace(nodeText(name))
	}

	if left := findOne(doc, byClassContains("div", "leftContainer")); left != nil {
		if img := findOne(left, func(n *html.Node) bool { return n.Data == "img" }); img != nil {
			resolved.ImageLink = strings.TrimSpace(attrVal(img, "src"))
		}
	}

	log := logger.FromContext(ctx)
	for _, title := range findAll(doc, byClass("div", "dataTitle")) {
		value := ""
		if item := nextElementSibling(title); item != nil {
			value = strings.TrimSpace(nodeText(item))
		}

		label := strings.ToLower(strings.TrimSpace(nodeText(title)))
		assign, ok := authorFieldAssign[label]
		if !ok {
			log.Warn("unknown author page field", logger.Data{"field": label, "link": link})
			continue
		}
		assign(resolved, value)
	}

	resolved.About = parseAbout(doc)

	return resolved, nil
}

// parseAbout pulls the bio text, preferring the full second fragment over
// the truncated first one.
func parseAbout(doc *html.Node) string {
	right := findOne(doc, byClass("div", "rightContainer"))
	if right == nil {
		return ""
	}
	about := findOne(right, byClass("div", "aboutAuthorInfo"))
	if about == nil {
		return ""
	}

	spans := findAll(about, func(n *html.Node) bool {
		return n.Data == "span" && strings.Contains(attrVal(n, "id"), "freeText")
	})
	if len(spans) > 1 {
		return innerHTML(spans[1])
	}
	if len(spans) == 1 {
		return innerHTML(spans[0])
	}
	return ""
}
