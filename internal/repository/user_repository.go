package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/taskstack/todo-service/internal/model"
)

// UserRepo persists rows of the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,password_hash,roles,created_on,last_login_on"

// Create inserts a user and returns it with the assigned id.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, roles, created_on) VALUES (?,?,?,?,?)",
		u.Username, u.Email, u.PasswordHash, joinRoles(u.Roles), u.CreatedOn)
	if err != nil {
		if strings.Contains(err.Error(), mysqlDuplicateKey) {
			return model.User{}, ErrUsernameExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	u.ID = uint64(id)
	return u, nil
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// FindByUsername fetches a user by exact username.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// FindAll returns every user ordered by id.
func (r *UserRepo) FindAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update rewrites every mutable column of the user row.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=?, email=?, password_hash=?, roles=?, last_login_on=? WHERE id=?",
		u.Username, u.Email, u.PasswordHash, joinRoles(u.Roles), u.LastLoginOn, u.ID)
	if err != nil && strings.Contains(err.Error(), mysqlDuplicateKey) {
		return ErrUsernameExists
	}
	return err
}

// Delete removes the user row.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	return err
}

type rowScanner interface{ Scan(dest ...any) error }

func (r *UserRepo) scanOne(row rowScanner) (model.User, error) {
	return scanUser(row)
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u         model.User
		roles     string
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &roles, &u.CreatedOn, &lastLogin)
	if err != nil {
		return model.User{}, err
	}
	u.Roles = splitRoles(roles)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginOn = &t
	}
	return u, nil
}

// joinRoles serializes a role set into the single roles column.
func joinRoles(roles []string) string { return strings.Join(roles, ",") }

func splitRoles(col string) []string {
	if col == "" {
		return nil
	}
	return strings.Split(col, ",")
}
