package repository

import (
	"context"
	"database/sql"

	"github.com/taskstack/todo-service/internal/model"
)

// TodoRepo persists rows of the 'todos' table.
type TodoRepo struct{ DB *sql.DB }

func NewTodoRepo(db *sql.DB) *TodoRepo { return &TodoRepo{DB: db} }

const todoColumns = "id,user_id,title,description,priority,status,created_on"

// Create inserts a todo and returns it with the assigned id.
func (r *TodoRepo) Create(ctx context.Context, t model.Todo) (model.Todo, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO todos (user_id, title, description, priority, status, created_on) VALUES (?,?,?,?,?,?)",
		t.UserID, t.Title, t.Description, t.Priority, t.Status, t.CreatedOn)
	if err != nil {
		return model.Todo{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Todo{}, err
	}
	t.ID = uint64(id)
	return t, nil
}

// FindByID fetches a todo regardless of owner.
func (r *TodoRepo) FindByID(ctx context.Context, id uint64) (model.Todo, error) {
	return scanTodo(r.DB.QueryRowContext(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE id=? LIMIT 1", id))
}

// FindByIDAndUser fetches a todo only when it belongs to the user.
// Missing row and wrong owner are indistinguishable on purpose; both
// come back as sql.ErrNoRows so handlers return the same 404 and leak
// nothing about other users' todos.
func (r *TodoRepo) FindByIDAndUser(ctx context.Context, id, userID uint64) (model.Todo, error) {
	return scanTodo(r.DB.QueryRowContext(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE id=? AND user_id=? LIMIT 1", id, userID))
}

// FindAll returns every todo ordered by id.
func (r *TodoRepo) FindAll(ctx context.Context) ([]model.Todo, error) {
	return r.queryMany(ctx, "SELECT "+todoColumns+" FROM todos ORDER BY id")
}

// FindAllForUser returns every todo owned by the user.
func (r *TodoRepo) FindAllForUser(ctx context.Context, userID uint64) ([]model.Todo, error) {
	return r.queryMany(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE user_id=? ORDER BY id", userID)
}

// Update rewrites the mutable columns of the todo row.
func (r *TodoRepo) Update(ctx context.Context, t model.Todo) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE todos SET title=?, description=?, priority=?, status=? WHERE id=? AND user_id=?",
		t.Title, t.Description, t.Priority, t.Status, t.ID, t.UserID)
	return err
}

// Delete removes the todo row.
func (r *TodoRepo) Delete(ctx context.Context, id, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM todos WHERE id=? AND user_id=?", id, userID)
	return err
}

func (r *TodoRepo) queryMany(ctx context.Context, query string, args ...any) ([]model.Todo, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTodo(row rowScanner) (model.Todo, error) {
	var t model.Todo
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.CreatedOn)
	if err != nil {
		return model.Todo{}, err
	}
	return t, nil
}
