package models

import "time"

// Role is an account's authorization level.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDefault Role = "default"
)

// Account is an authenticated user of the admin API.
type Account struct {
	Base `bson:",inline"`

	Name         string     `bson:"name" json:"name" validate:"required"`
	Email        string     `bson:"email" json:"email" validate:"required,email"`
	PasswordHash string     `bson:"password" json:"-"`
	Role         Role       `bson:"role" json:"role"`
	LastLogin    *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the account may perform admin operations.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
