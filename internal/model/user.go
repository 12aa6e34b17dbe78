package model

import "time"

// Roles a user may hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an application user record as stored in the `users`
// table.  The password hash never leaves the repository and service
// layers; PushToken is the device token used by the push gateway.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – "user" or "admin".
//	PushToken    – optional push-notification token.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	PushToken    *string   `json:"push_token"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsValidRole reports whether r is a known role.
func IsValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}
