package history

import (
	"time"

	"github.com/google/uuid"
)

// Day is one slot of the yearly activity grid. PostID is nil on days without
// an entry.
type Day struct {
	Date   time.Time  `json:"date"`
	PostID *uuid.UUID `json:"post_id,omitempty"`
	Chars  int        `json:"chars"`
	Color  string     `json:"color,omitempty"`
}

type YearResponse struct {
	Year int    `json:"year"`
	Days []*Day `json:"days"`
}

// ActivityColor maps an entry's length to its shade on the activity grid.
func ActivityColor(chars int) string {
	switch {
	case chars <= 50:
		return "#d6e685"
	case chars <= 150:
		return "#8cc665"
	case chars <= 250:
		return "#44a340"
	default:
		return "#1e6823"
	}
}
