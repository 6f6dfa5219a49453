package types

import "time"

// Account represents a user of the collection tracker.
// It contains identity, role, and audit metadata.
type Account struct {
	// ID is the unique identifier of the account.
	ID int `json:"id" db:"id"`

	// Username is the unique login name.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the bcrypt hash of the account's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Role indicates the account's authorization level within the
	// system ("admin" or "user").
	Role string `json:"role" db:"role"`

	// IsInitial reports whether the account is still using the
	// auto-provisioned default password.
	IsInitial bool `json:"is_initial" db:"is_initial"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Account roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
