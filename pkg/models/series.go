package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Series struct {
	bun.BaseModel `bun:"table:series,alias:s"`

	ID          string    `bun:"id,pk" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `bun:",nullzero" json:"name"`
	SortName    string    `json:"sort_name"`
	Description *string   `json:"description,omitempty"`
	Link        *string   `json:"link,omitempty"`
}
