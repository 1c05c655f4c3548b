package model

import (
	"strings"
	"time"
)

// Role controls what a user may do beyond their own orders.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSupport  Role = "support"
	RoleAdmin    Role = "admin"
)

// IsStaff reports whether the role may act on orders it does not own.
func (r Role) IsStaff() bool {
	return r == RoleSupport || r == RoleAdmin
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSupport, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Role         Role
	CreatedAt    time.Time
}

// FullName returns the display name, falling back to the email address.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Registration carries sign-up input.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}
