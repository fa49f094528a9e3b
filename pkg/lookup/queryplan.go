package lookup

import "strings"

// querySeparator joins words inside a search query string.
const querySeparator = "+"

// QueryKind tells a source what a query's terms describe, so sources with
// fielded search syntax can scope the request accordingly.
type QueryKind int

const (
	QueryTitle QueryKind = iota
	QueryAuthor
	QueryTitleAuthor
)

// Query is one planned search request.
type Query struct {
	Text string
	Kind QueryKind
}

// PlanTitleQueries builds the ordered title-prefix search queries for a raw
// title. The title is split on "-" and a query is built for each strict
// prefix of the segments; the list comes back longest first, so the most
// specific query is tried before the broad ones. Titles without a dash
// yield no queries and the caller falls back to the author strategy.
func PlanTitleQueries(title string) []Query {
	segments := strings.Split(title, "-")
	if len(segments) < 2 {
		return nil
	}

	queries := make([]Query, 0, len(segments)-1)
	for i := 1; i < len(segments); i++ {
		queries = append(queries, Query{Text: buildQuery(strings.Join(segments[:i], " ")), Kind: QueryTitle})
	}

	// Reverse so the longest prefix comes first.
	for i, j := 0, len(queries)-1; i < j; i, j = i+1, j-1 {
		queries[i], queries[j] = queries[j], queries[i]
	}

	return queries
}

// PlanAuthorQuery builds the author-only fallback query from every author
// name joined together.
func PlanAuthorQuery(authors []string) Query {
	return Query{Text: buildQuery(strings.Join(authors, " ")), Kind: QueryAuthor}
}

// PlanTitleAuthorQuery builds the last-resort combined query.
func PlanTitleAuthorQuery(title string, authors []string) Query {
	return Query{Text: buildQuery(title + " " + strings.Join(authors, " ")), Kind: QueryTitleAuthor}
}

func buildQuery(s string) string {
	return strings.Join(strings.Fields(s), querySeparator)
}
