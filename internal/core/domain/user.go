package domain

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User models a registered person who can book rooms.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user may act on resources owned by others.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Owns reports whether ownerID identifies this user.
func (u *User) Owns(ownerID string) bool {
	return u != nil && u.ID != "" && u.ID == ownerID
}

// Public returns a copy stripped of credential fields.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
