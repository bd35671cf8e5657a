package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Validator resolves presented token values to identities. It is
// invoked at most once per inbound request, before any route logic.
type Validator struct {
	Users  UserDirectory
	Logins LoginStore
	Now    func() time.Time
}

// NewValidator builds a Validator using the real clock.
func NewValidator(users UserDirectory, logins LoginStore) *Validator {
	return &Validator{Users: users, Logins: logins, Now: time.Now}
}

// Validate looks up the token and returns the owning user's identity.
// Failure kinds: ErrInvalidToken (no such token), ErrExpiredToken
// (expiry not strictly after now; exact equality rejects),
// ErrUnknownPrincipal (owner deleted after issuance).
//
// Roles are re-read from the user row on every call, so a role change
// takes effect on the very next request rather than at token renewal.
func (v *Validator) Validate(ctx context.Context, token string) (Identity, error) {
	login, err := v.Logins.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Anonymous(), ErrInvalidToken
		}
		return Anonymous(), fmt.Errorf("find login: %w", err)
	}
	if !login.ExpiresOn.After(v.Now()) {
		return Anonymous(), ErrExpiredToken
	}
	u, err := v.Users.FindByID(ctx, login.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Anonymous(), ErrUnknownPrincipal
		}
		return Anonymous(), fmt.Errorf("find user: %w", err)
	}
	return Authenticated(token, u.ID, u.Roles), nil
}
