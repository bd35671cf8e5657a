package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskstack/todo-service/internal/httperr"
	"github.com/taskstack/todo-service/internal/model"
	"github.com/taskstack/todo-service/internal/queue"
)

// TodoStore is the view of the todo repository these handlers need.
type TodoStore interface {
	Create(ctx context.Context, t model.Todo) (model.Todo, error)
	FindByID(ctx context.Context, id uint64) (model.Todo, error)
	FindByIDAndUser(ctx context.Context, id, userID uint64) (model.Todo, error)
	FindAll(ctx context.Context) ([]model.Todo, error)
	FindAllForUser(ctx context.Context, userID uint64) ([]model.Todo, error)
	Update(ctx context.Context, t model.Todo) error
	Delete(ctx context.Context, id, userID uint64) error
}

// TodoEventPublisher pushes a completion event to the broker. A nil
// publisher disables events; a failing one is logged and ignored so
// the request never depends on the broker.
type TodoEventPublisher func(ctx context.Context, ev queue.TodoCompletedEvent) error

// TodoHandler bundles dependencies for todo CRUD endpoints.
type TodoHandler struct {
	Todos   TodoStore
	Publish TodoEventPublisher
}

func NewTodoHandler(todos TodoStore, publish TodoEventPublisher) *TodoHandler {
	return &TodoHandler{Todos: todos, Publish: publish}
}

// ----- DTOs -----

type createTodoReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

type updateTodoReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
}

type todoDto struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedOn   time.Time `json:"created_on"`
}

func mapTodo(t model.Todo) todoDto {
	return todoDto{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		CreatedOn:   t.CreatedOn,
	}
}

func mapTodos(todos []model.Todo) []todoDto {
	out := make([]todoDto, 0, len(todos))
	for _, t := range todos {
		out = append(out, mapTodo(t))
	}
	return out
}

// ListTodos returns every todo across all users. Admin only.
func (h *TodoHandler) ListTodos(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	todos, err := h.Todos.FindAll(ctx)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, mapTodos(todos))
}

// GetTodo returns a todo by bare id. Admin only.
func (h *TodoHandler) GetTodo(c echo.Context) error {
	todoID, err := pathID(c, "todoId")
	if err != nil {
		return httperr.BadRequest(c, "invalid todo id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Todos.FindByID(ctx, todoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return httperr.NotFound(c, "todo not found")
		}
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, mapTodo(t))
}

// ListTodosForUser returns one user's todos. Admin or owner.
func (h *TodoHandler) ListTodosForUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return httperr.BadRequest(c, "invalid user id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	todos, err := h.Todos.FindAllForUser(ctx, userID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, mapTodos(todos))
}

// GetTodoForUser returns one todo scoped to its owner.
func (h *TodoHandler) GetTodoForUser(c echo.Context) error {
	userID, todoID, err := pathUserTodo(c)
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Todos.FindByIDAndUser(ctx, todoID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return httperr.NotFound(c, "todo not found")
		}
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, mapTodo(t))
}

// CreateTodoForUser inserts a todo owned by the path user.
func (h *TodoHandler) CreateTodoForUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return httperr.BadRequest(c, "invalid user id")
	}
	var req createTodoReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest(c, "invalid body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return httperr.BadRequest(c, "title is required")
	}
	if req.Priority == "" {
		req.Priority = model.PriorityMedium
	}
	if req.Status == "" {
		req.Status = model.StatusPending
	}
	if !model.ValidPriority(req.Priority) || !model.ValidStatus(req.Status) {
		return httperr.BadRequest(c, "unknown priority or status")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Todos.Create(ctx, model.Todo{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		CreatedOn:   time.Now().UTC(),
	})
	if err != nil {
		return httperr.Internal(c, err)
	}
	log.Printf("created todo %d for user %d", t.ID, t.UserID)
	return c.JSON(http.StatusCreated, mapTodo(t))
}

// UpdateTodoForUser applies a partial update. A transition into DONE
// publishes a completion event after the row is written.
func (h *TodoHandler) UpdateTodoForUser(c echo.Context) error {
	userID, todoID, err := pathUserTodo(c)
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}
	var req updateTodoReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Todos.FindByIDAndUser(ctx, todoID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return httperr.NotFound(c, "todo not found")
		}
		return httperr.Internal(c, err)
	}

	wasDone := t.Status == model.StatusDone
	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
		if t.Title == "" {
			return httperr.BadRequest(c, "title must not be empty")
		}
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Priority != nil {
		if !model.ValidPriority(*req.Priority) {
			return httperr.BadRequest(c, "unknown priority")
		}
		t.Priority = *req.Priority
	}
	if req.Status != nil {
		if !model.ValidStatus(*req.Status) {
			return httperr.BadRequest(c, "unknown status")
		}
		t.Status = *req.Status
	}

	if err := h.Todos.Update(ctx, t); err != nil {
		return httperr.Internal(c, err)
	}

	if !wasDone && t.Status == model.StatusDone && h.Publish != nil {
		ev := queue.TodoCompletedEvent{
			TodoID:      t.ID,
			UserID:      t.UserID,
			Title:       t.Title,
			Priority:    t.Priority,
			CompletedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Publish(ctx, ev); err != nil {
			log.Printf("publish todo.completed for todo %d failed: %v", t.ID, err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteTodoForUser removes one todo scoped to its owner.
func (h *TodoHandler) DeleteTodoForUser(c echo.Context) error {
	userID, todoID, err := pathUserTodo(c)
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Todos.FindByIDAndUser(ctx, todoID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return httperr.NotFound(c, "todo not found")
		}
		return httperr.Internal(c, err)
	}
	if err := h.Todos.Delete(ctx, todoID, userID); err != nil {
		return httperr.Internal(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func pathUserTodo(c echo.Context) (userID, todoID uint64, err error) {
	if userID, err = pathID(c, "userId"); err != nil {
		return 0, 0, err
	}
	if todoID, err = pathID(c, "todoId"); err != nil {
		return 0, 0, err
	}
	return userID, todoID, nil
}
