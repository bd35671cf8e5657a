package model

import "time"

// Role names stored in the `users` roles column. A user may hold any
// combination of them; a freshly registered account gets RoleUser only.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents an account record as stored in the `users` table.
// Each field corresponds to a column. The password hash is kept only
// for verification at login time and must never be serialized into a
// response; handlers define separate response types with JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Email        – contact address.
//  PasswordHash – bcrypt hashed password.
//  Roles        – role names granted to the user (ADMIN and/or USER).
//  CreatedOn    – timestamp of creation.
//  LastLoginOn  – timestamp of the most recent login (nil if never).
type User struct {
	ID           uint64     // users.id
	Username     string     // users.username
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	Roles        []string   // users.roles (comma-separated column)
	CreatedOn    time.Time  // users.created_on
	LastLoginOn  *time.Time // users.last_login_on (nullable)
}

// HasRole reports whether the user was granted the named role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
