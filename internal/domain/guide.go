package domain

import "time"

// Guide is a purchasable content bundle. Guides are authored by an external
// content process; this service only reads them.
type Guide struct {
	ID          string
	Slug        string
	Title       string
	Description string
	CoverImage  string
	Price       int64 // minor currency units
	Currency    string
	Content     string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
