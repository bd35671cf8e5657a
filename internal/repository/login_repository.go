package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/taskstack/todo-service/internal/auth"
	"github.com/taskstack/todo-service/internal/model"
)

// LoginRepo persists session tokens in the 'logins' table. Token
// values carry a unique index; Insert maps a violation onto
// auth.ErrDuplicateToken so the issuer can retry with a fresh value.
type LoginRepo struct{ DB *sql.DB }

func NewLoginRepo(db *sql.DB) *LoginRepo { return &LoginRepo{DB: db} }

const loginColumns = "id,user_id,auth_token,created_on,expires_on"

// FindByToken fetches a login by its token value.
func (r *LoginRepo) FindByToken(ctx context.Context, token string) (model.Login, error) {
	return scanLogin(r.DB.QueryRowContext(ctx,
		"SELECT "+loginColumns+" FROM logins WHERE auth_token=? LIMIT 1", token))
}

// FindByID fetches a login by id.
func (r *LoginRepo) FindByID(ctx context.Context, id uint64) (model.Login, error) {
	return scanLogin(r.DB.QueryRowContext(ctx,
		"SELECT "+loginColumns+" FROM logins WHERE id=? LIMIT 1", id))
}

// FindAll returns every login ordered by id.
func (r *LoginRepo) FindAll(ctx context.Context) ([]model.Login, error) {
	return r.queryMany(ctx, "SELECT "+loginColumns+" FROM logins ORDER BY id")
}

// FindAllForUser returns every login owned by the user.
func (r *LoginRepo) FindAllForUser(ctx context.Context, userID uint64) ([]model.Login, error) {
	return r.queryMany(ctx,
		"SELECT "+loginColumns+" FROM logins WHERE user_id=? ORDER BY id", userID)
}

// Insert stores a new login and returns it with the assigned id.
func (r *LoginRepo) Insert(ctx context.Context, l model.Login) (model.Login, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO logins (user_id, auth_token, created_on, expires_on) VALUES (?,?,?,?)",
		l.UserID, l.AuthToken, l.CreatedOn, l.ExpiresOn)
	if err != nil {
		if strings.Contains(err.Error(), mysqlDuplicateKey) {
			return model.Login{}, auth.ErrDuplicateToken
		}
		return model.Login{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Login{}, err
	}
	l.ID = uint64(id)
	return l, nil
}

// Delete removes one login row.
func (r *LoginRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM logins WHERE id=?", id)
	return err
}

// DeleteAllForUser removes every login owned by the user and reports
// how many rows were deleted.
func (r *LoginRepo) DeleteAllForUser(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM logins WHERE user_id=?", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *LoginRepo) queryMany(ctx context.Context, query string, args ...any) ([]model.Login, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Login
	for rows.Next() {
		l, err := scanLogin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLogin(row rowScanner) (model.Login, error) {
	var l model.Login
	err := row.Scan(&l.ID, &l.UserID, &l.AuthToken, &l.CreatedOn, &l.ExpiresOn)
	if err != nil {
		return model.Login{}, err
	}
	return l, nil
}
