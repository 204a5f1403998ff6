package post

import (
	"time"

	"github.com/google/uuid"
)

// MaxTextLength bounds the body of a diary entry.
const MaxTextLength = 350

type Post struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Author          string    `json:"author" db:"author"`
	Date            time.Time `json:"date" db:"date"`
	Text            string    `json:"text" db:"text"`
	Mood            int       `json:"mood" db:"mood"`
	LocationLat     *float64  `json:"location_lat,omitempty" db:"location_lat"`
	LocationLon     *float64  `json:"location_lon,omitempty" db:"location_lon"`
	LocationVerbose *string   `json:"location_verbose,omitempty" db:"location_verbose"`
	Public          bool      `json:"public" db:"public"`
	PartOf          *string   `json:"part_of,omitempty" db:"part_of"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	LastChangedAt   time.Time `json:"last_changed_at" db:"last_changed_at"`
	Sent            bool      `json:"sent" db:"sent"`
}

type CreatePostRequest struct {
	Date            string   `json:"date"`
	Text            string   `json:"text"`
	Mood            int      `json:"mood"`
	LocationLat     *float64 `json:"location_lat,omitempty"`
	LocationLon     *float64 `json:"location_lon,omitempty"`
	LocationVerbose *string  `json:"location_verbose,omitempty"`
	Public          bool     `json:"public"`
	PartOf          *string  `json:"part_of,omitempty"`
}

type UpdatePostRequest struct {
	Text   string `json:"text"`
	Mood   int    `json:"mood"`
	Public *bool  `json:"public,omitempty"`
}

// Editable reports whether the post can still be changed by its author. Posts
// lock down once their date falls out of the edit window.
func (p *Post) Editable(window int, today time.Time) bool {
	return p.Date.After(today.AddDate(0, 0, -window))
}
