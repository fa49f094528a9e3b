package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Author rows are created lazily the first time a resolved book credits
// them and enriched on later encounters; they are never deleted outside an
// operator purge. SourceLinked marks authors whose Link points at a real
// source author page, which is what the enrichment workflow iterates over.
type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID           string    `bun:"id,pk" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Name         string    `bun:",nullzero" json:"name"`
	SortName     string    `json:"sort_name"`
	Role         string    `bun:",nullzero" json:"role"`
	SourceLinked bool      `json:"source_linked"`
	Link         *string   `json:"link,omitempty"`

	// Bio fields filled in by the author-enrichment workflow.
	About      *string `json:"about,omitempty"`
	ImageLink  *string `json:"image_link,omitempty"`
	BornDate   *string `json:"born_date,omitempty"`
	DiedDate   *string `json:"died_date,omitempty"`
	Website    *string `json:"website,omitempty"`
	Influences *string `json:"influences,omitempty"`
	GenreTags  *string `json:"genre_tags,omitempty"`
	Twitter    *string `json:"twitter,omitempty"`
}
