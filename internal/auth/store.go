package auth

import (
	"context"

	"github.com/taskstack/todo-service/internal/model"
)

// UserDirectory is the view of the user store the core needs: lookup
// by id and by username. Absence is reported as sql.ErrNoRows by the
// MySQL implementation; the core maps that onto its own error kinds.
type UserDirectory interface {
	FindByID(ctx context.Context, id uint64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
}

// LoginStore persists session tokens. Single-row semantics per call,
// no batching or caching implied; the Redis layer in internal/cache
// decorates this interface without changing its contract. Insert must
// return ErrDuplicateToken when the token value collides with a live
// row so the issuer can retry.
type LoginStore interface {
	FindByToken(ctx context.Context, token string) (model.Login, error)
	FindByID(ctx context.Context, id uint64) (model.Login, error)
	FindAll(ctx context.Context) ([]model.Login, error)
	FindAllForUser(ctx context.Context, userID uint64) ([]model.Login, error)
	Insert(ctx context.Context, login model.Login) (model.Login, error)
	Delete(ctx context.Context, id uint64) error
	DeleteAllForUser(ctx context.Context, userID uint64) (int64, error)
}
