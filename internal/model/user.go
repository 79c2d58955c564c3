package model

import "time"

// RoleName is the closed set of role names stored in `roles.name`.
type RoleName string

const (
	RoleAdmin      RoleName = "admin"
	RoleAgent      RoleName = "agent"
	RoleBackoffice RoleName = "backoffice"
)

// AllRoles lists every role the application knows about, in seed order.
var AllRoles = []RoleName{RoleAdmin, RoleBackoffice, RoleAgent}

// Valid reports whether r is one of the known roles.
func (r RoleName) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// HasRole reports whether required is present in roles.
func HasRole(roles []RoleName, required RoleName) bool {
	for _, r := range roles {
		if r == required {
			return true
		}
	}
	return false
}

// User represents an application user as stored in the `users` table.
// Roles is filled from `user_roles` joined with `roles`.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique, lower-cased email address.
//	Username     – display name used in history entries and comments.
//	PasswordHash – bcrypt hashed password.
//	Roles        – role names granted to the user.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email
	Username     string     // users.username
	PasswordHash string     // users.password_hash
	Roles        []RoleName // user_roles -> roles.name
	CreatedAt    time.Time  // users.created_at
}

// HasRole reports whether the user was granted role r.
func (u User) HasRole(r RoleName) bool { return HasRole(u.Roles, r) }

// UserToken models one session in the `user_tokens` ledger. The token
// strings are never stored; only their SHA-256 hex digests. Deleting the
// row revokes the session.
type UserToken struct {
	ID               uint64    // user_tokens.id
	UserID           uint64    // user_tokens.user_id
	AccessTokenHash  string    // user_tokens.access_token_hash
	RefreshTokenHash string    // user_tokens.refresh_token_hash
	ExpiresAt        time.Time // user_tokens.expires_at (refresh expiry)
	CreatedAt        time.Time // user_tokens.created_at
}

// Expired reports whether the refresh window of the session has passed.
func (t UserToken) Expired(now time.Time) bool { return !now.Before(t.ExpiresAt) }
