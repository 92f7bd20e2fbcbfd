package content

import (
	"time"

	"github.com/google/uuid"
)

// Status is the publication state of an article.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Author is the public view of an article's owner.
type Author struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Article struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	CategoryID uuid.UUID  `json:"category_id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Body       string     `json:"body"`
	BodyHTML   string     `json:"body_html,omitempty"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`

	// Loaded by listing queries only.
	Category *Category `json:"category,omitempty"`
	Author   *Author   `json:"user,omitempty"`
}

// PublicFilter narrows the published article listing.
type PublicFilter struct {
	// Category matches a category slug or name.
	Category string
	UserID   *uuid.UUID
}
