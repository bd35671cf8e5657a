package model

import "time"

// Login models a row in the `logins` table: one opaque session token
// issued to a user. The token value is generated once at issuance and
// never mutated afterwards; rows are only inserted and deleted.
// Expired rows are not purged, validation simply rejects them.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the session.
//  AuthToken – opaque token value (unique across live logins).
//  CreatedOn – issuance timestamp.
//  ExpiresOn – CreatedOn plus the configured token lifetime.
type Login struct {
	ID        uint64    // logins.id
	UserID    uint64    // logins.user_id
	AuthToken string    // logins.auth_token
	CreatedOn time.Time // logins.created_on
	ExpiresOn time.Time // logins.expires_on
}
