package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Book is a catalog book. Rows are created by the import side with
// FetchState set to not_tried; the lookup engine only transitions state and
// enriches the Lookup* fields. Books are never deleted by the engine.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID                string    `bun:"id,pk" json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	Title             string    `bun:",nullzero" json:"title"`
	Location          string    `bun:",nullzero" json:"location"`
	ISBN              *string   `json:"isbn,omitempty"`
	FetchState        string    `bun:",nullzero" json:"fetch_state"`
	LookupTitle       *string   `json:"lookup_title,omitempty"`
	LookupDescription *string   `json:"lookup_description,omitempty"`
	LookupLink        *string   `json:"lookup_link,omitempty"`
	LookupCoverImage  *string   `json:"lookup_cover_image,omitempty"`

	Authors []*Author `bun:"m2m:book_authors,join:Book=Author" json:"authors,omitempty"`
	Genres  []*Genre  `bun:"m2m:book_genres,join:Book=Genre" json:"genres,omitempty"`
}

// BookAuthor links a book to an author with the role the source credited
// them with. The (book, author, role) tuple is unique.
type BookAuthor struct {
	bun.BaseModel `bun:"table:book_authors,alias:ba"`

	ID       int     `bun:",pk,nullzero" json:"id"`
	BookID   string  `bun:",nullzero" json:"book_id"`
	AuthorID string  `bun:",nullzero" json:"author_id"`
	Role     string  `bun:",nullzero" json:"role"`
	Book     *Book   `bun:"rel:belongs-to,join:book_id=id" json:"-"`
	Author   *Author `bun:"rel:belongs-to,join:author_id=id" json:"-"`
}

// BookSeries links a book to a series with the volume label the source
// shows for it. The (book, series) tuple is unique; the volume label is
// refreshed when a later resolution improves on it.
type BookSeries struct {
	bun.BaseModel `bun:"table:book_series,alias:bs"`

	ID       int     `bun:",pk,nullzero" json:"id"`
	BookID   string  `bun:",nullzero" json:"book_id"`
	SeriesID string  `bun:",nullzero" json:"series_id"`
	Volume   string  `json:"volume"`
	Book     *Book   `bun:"rel:belongs-to,join:book_id=id" json:"-"`
	Series   *Series `bun:"rel:belongs-to,join:series_id=id" json:"-"`
}
