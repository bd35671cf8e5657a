// Package auth implements the authentication and authorization core:
// opaque session token issuance and validation, the per-request
// identity value, and the policy functions gating every protected
// operation. Durable state lives behind the store interfaces in
// store.go; this package holds no state across requests.
package auth

import "errors"

// Flat error kinds produced by the core. Handlers map these onto
// HTTP responses; the token middleware flattens the three token
// failures to an anonymous identity instead of surfacing them.
var (
	// ErrBadCredentials covers both unknown username and wrong
	// password so that login responses never reveal which part
	// was wrong.
	ErrBadCredentials = errors.New("bad credentials were provided")

	// ErrInvalidToken means the presented value matches no stored login.
	ErrInvalidToken = errors.New("invalid auth token")

	// ErrExpiredToken means the login exists but its expiry has passed.
	ErrExpiredToken = errors.New("expired auth token")

	// ErrUnknownPrincipal means the login is live but its owning user
	// record no longer exists.
	ErrUnknownPrincipal = errors.New("unknown user for auth token")

	// ErrAccessDenied is returned when a policy check fails for an
	// authenticated caller.
	ErrAccessDenied = errors.New("access is denied")

	// ErrAuthenticationRequired is returned when a gated operation is
	// attempted with no identity present at all.
	ErrAuthenticationRequired = errors.New("authentication is required")

	// ErrDuplicateToken is returned by LoginStore.Insert when the
	// generated token value collides with a live row. The issuer
	// retries with a fresh value.
	ErrDuplicateToken = errors.New("auth token already exists")
)
