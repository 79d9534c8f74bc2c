// Package statuses manages the configurable sample status labels.
package statuses

import (
	"time"

	"github.com/google/uuid"
)

// FallbackColor is used when a sample references a status that no longer
// exists.
const FallbackColor = "#808080"

// Status is a display label for the sample workflow, for example
// "Recibida" or "En análisis", with its badge color.
type Status struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Update carries a partial status mutation; nil fields stay untouched.
type Update struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}
