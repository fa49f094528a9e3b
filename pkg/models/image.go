package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Image stores a mirrored cover or portrait, keyed by the id of the book or
// author that owns it.
type Image struct {
	bun.BaseModel `bun:"table:images,alias:i"`

	ID          string    `bun:"id,pk" json:"id"`
	UpdatedAt   time.Time `json:"updated_at"`
	ContentType string    `bun:",nullzero" json:"content_type"`
	Data        []byte    `json:"-"`
}
