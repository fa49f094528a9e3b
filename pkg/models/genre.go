package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:g"`

	ID        string    `bun:"id,pk" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
}

type BookGenre struct {
	bun.BaseModel `bun:"table:book_genres,alias:bg"`

	ID      int    `bun:",pk,nullzero" json:"id"`
	BookID  string `bun:",nullzero" json:"book_id"`
	GenreID string `bun:",nullzero" json:"genre_id"`
	Book    *Book  `bun:"rel:belongs-to,join:book_id=id" json:"-"`
	Genre   *Genre `bun:"rel:belongs-to,join:genre_id=id" json:"-"`
}
