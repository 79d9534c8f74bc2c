// Package clients manages the laboratory's client registry.
package clients

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a person or organisation submitting samples.
type Client struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Update carries a partial client mutation; nil fields stay untouched.
type Update struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}
