package domain

import "time"

type UserID string

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           UserID
	Email        string
	Role         Role
	Balance      float64
	APIKeyPrefix string
	Active       bool
	Verified     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// HasRole reports whether the profile satisfies the given requirement. An
// admin satisfies every role.
func (u User) HasRole(required Role) bool {
	if required == "" || required == RoleUser {
		return true
	}

	return u.Role == required
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) CanAfford(amount float64) bool {
	return u.Balance >= amount
}
