package models

import (
	"strings"
	"time"
)

// UserRole represents the roles carried in access tokens.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleMember UserRole = "MEMBER"
)

// User is a registered portal member stored in the users table.
type User struct {
	ID               string     `db:"id" json:"id"`
	FirstName        string     `db:"first_name" json:"first_name"`
	LastName         string     `db:"last_name" json:"last_name"`
	Email            string     `db:"email" json:"email"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	ResetToken       *string    `db:"reset_token" json:"-"`
	ResetTokenExpiry *time.Time `db:"reset_token_expiry" json:"-"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Initials returns the upper-cased first letters of first and last name.
func (u User) Initials() string {
	var out []rune
	for _, part := range []string{u.FirstName, u.LastName} {
		for _, r := range part {
			out = append(out, r)
			break
		}
	}
	return strings.ToUpper(string(out))
}

// HasPendingReset reports whether a reset token is stored.
func (u User) HasPendingReset() bool {
	return u.ResetToken != nil && u.ResetTokenExpiry != nil
}

// UserFilter captures filtering criteria for the admin user list.
type UserFilter struct {
	Search   string
	Page     int
	PageSize int
}
