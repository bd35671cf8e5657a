// Package repository implements the MySQL-backed stores for users,
// logins and todos. Sentinel errors defined here let handlers map
// store failures onto HTTP statuses without string matching.
package repository

import "errors"

// ErrUsernameExists is returned when an insert or update collides
// with the unique index on users.username. Handlers translate it
// into an HTTP 409 response.
var ErrUsernameExists = errors.New("username already exists")

// mysqlDuplicateKey is the error number MySQL reports on a unique
// index violation (ER_DUP_ENTRY).
const mysqlDuplicateKey = "1062"
