package domain

import "time"

// User is the account entity owned by the user module; the auth core only
// reads it and bumps LastLoginAt on successful login.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	LastLoginAt  *time.Time // nil until the first login
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SafeUser is the projection returned to clients. It carries neither the
// password hash nor the last-login timestamp.
type SafeUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Safe returns the client-facing projection of the user.
func (u *User) Safe() SafeUser {
	return SafeUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
