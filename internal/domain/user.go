package domain

import "time"

// User is the domain model for customers of the store.
type User struct {
	ID           string
	Email        string
	Name         *string
	Image        *string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName returns the profile name, falling back to the email address.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}
