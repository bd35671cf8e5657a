package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskstack/todo-service/internal/model"
)

// insertAttempts bounds the retry loop on a token value collision.
// The store enforces uniqueness with an index; a collision between
// random UUIDs is rare enough that one retry is already generous.
const insertAttempts = 3

// Issuer verifies username/password pairs and mints session tokens.
// Each successful call creates exactly one login row; concurrent live
// logins per user are allowed.
type Issuer struct {
	Users  UserDirectory
	Logins LoginStore
	TTL    time.Duration
	Now    func() time.Time
}

// NewIssuer builds an Issuer with the given token lifetime using the
// real clock.
func NewIssuer(users UserDirectory, logins LoginStore, ttl time.Duration) *Issuer {
	return &Issuer{Users: users, Logins: logins, TTL: ttl, Now: time.Now}
}

// Issue verifies the credentials and, on success, inserts and returns
// a fresh login. Unknown username and wrong password both come back
// as ErrBadCredentials so callers cannot enumerate accounts.
func (i *Issuer) Issue(ctx context.Context, username, password string) (model.Login, error) {
	u, err := i.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Login{}, ErrBadCredentials
		}
		return model.Login{}, fmt.Errorf("find user: %w", err)
	}
	if !verifyPassword(u.PasswordHash, password) {
		return model.Login{}, ErrBadCredentials
	}

	now := i.Now().UTC()
	for attempt := 0; attempt < insertAttempts; attempt++ {
		login, err := i.Logins.Insert(ctx, model.Login{
			UserID:    u.ID,
			AuthToken: uuid.NewString(),
			CreatedOn: now,
			ExpiresOn: now.Add(i.TTL),
		})
		if errors.Is(err, ErrDuplicateToken) {
			continue
		}
		if err != nil {
			return model.Login{}, fmt.Errorf("insert login: %w", err)
		}
		return login, nil
	}
	return model.Login{}, fmt.Errorf("insert login: %w", ErrDuplicateToken)
}
