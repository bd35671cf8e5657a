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

	"github.com/taskstack/todo-service/internal/auth"
	"github.com/taskstack/todo-service/internal/httperr"
	"github.com/taskstack/todo-service/internal/model"
	"github.com/taskstack/todo-service/internal/repository"
	"github.com/taskstack/todo-service/internal/validate"
)

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrUsernameExists)
}

// UserStore is the view of the user repository these handlers need.
// *repository.UserRepo satisfies it; tests plug an in-memory version.
type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	FindByID(ctx context.Context, id uint64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u model.User) error
	Delete(ctx context.Context, id uint64) error
}

// UserHandler bundles dependencies for user CRUD endpoints.
type UserHandler struct {
	Users      UserStore
	BcryptCost int
}

func NewUserHandler(users UserStore, bcryptCost int) *UserHandler {
	return &UserHandler{Users: users, BcryptCost: bcryptCost}
}

// ----- DTOs -----

type createUserReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// updateUserReq uses pointers so absent and empty fields can be told
// apart: nil means "leave unchanged". A non-nil Roles field counts as
// a role change for the authorization rule even when the value equals
// the current roles.
type updateUserReq struct {
	Username *string  `json:"username"`
	Password *string  `json:"password"`
	Email    *string  `json:"email"`
	Roles    []string `json:"roles"`
}

type userDto struct {
	ID          uint64     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Roles       []string   `json:"roles"`
	CreatedOn   time.Time  `json:"created_on"`
	LastLoginOn *time.Time `json:"last_login_on,omitempty"`
}

func mapUser(u model.User) userDto {
	return userDto{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Roles:       u.Roles,
		CreatedOn:   u.CreatedOn,
		LastLoginOn: u.LastLoginOn,
	}
}

// Register creates an account with the USER role. Public endpoint.
func (h *UserHandler) Register(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest(c, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if msgs := validateNewUser(req); len(msgs) > 0 {
		return httperr.BadRequest(c, msgs...)
	}

	hash, err := auth.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		return httperr.Internal(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Create(ctx, model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Roles:        []string{model.RoleUser},
		CreatedOn:    time.Now().UTC(),
	})
	if err != nil {
		if isDuplicate(err) {
			return httperr.Conflict(c, "username already exists")
		}
		return httperr.Internal(c, err)
	}
	log.Printf("created user %d (%s)", u.ID, u.Username)
	return c.JSON(http.StatusCreated, mapUser(u))
}

// ListUsers returns all accounts. Admin only.
func (h *UserHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.FindAll(ctx)
	if err != nil {
		return httperr.Internal(c, err)
	}
	out := make([]userDto, 0, len(users))
	for _, u := range users {
		out = append(out, mapUser(u))
	}
	return c.JSON(http.StatusOK, out)
}

// GetUser returns one account. Admin or owner.
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return httperr.BadRequest(c, "invalid user id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return httperr.NotFound(c, "user not found")
		}
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, mapUser(u))
}

// UpdateUser applies a partial profile update. The authorization rule
// needs the request body (a roles field makes the update admin-only),
// so the check runs here after binding rather than in route
// middleware. Denial happens before any store write.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return httperr.BadRequest(c, "invalid user id")
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest(c, "invalid body")
	}

	id := identity(c)
	if !id.IsAuthenticated() {
		return httperr.Unauthorized(c, "Authentication is required",
			auth.ErrAuthenticationRequired.Error())
	}
	if !auth.CanUpdateUser(id, userID, req.Roles != nil) {
		return httperr.Forbidden(c, "profile update denied")
	}
	if msgs := validateUserUpdate(req); len(msgs) > 0 {
		return httperr.BadRequest(c, msgs...)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return httperr.NotFound(c, "user not found")
		}
		return httperr.Internal(c, err)
	}

	if req.Username != nil {
		u.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		u.Email = strings.TrimSpace(*req.Email)
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password, h.BcryptCost)
		if err != nil {
			return httperr.Internal(c, err)
		}
		u.PasswordHash = hash
	}
	if req.Roles != nil {
		u.Roles = req.Roles
	}

	if err := h.Users.Update(ctx, u); err != nil {
		if isDuplicate(err) {
			return httperr.Conflict(c, "username already exists")
		}
		return httperr.Internal(c, err)
	}
	log.Printf("updated user %d", u.ID)
	return c.NoContent(http.StatusNoContent)
}

// DeleteUser removes an account. Admin only. Already-issued tokens of
// the deleted user stop validating immediately because validation
// re-reads the user row.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return httperr.BadRequest(c, "invalid user id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return httperr.NotFound(c, "user not found")
		}
		return httperr.Internal(c, err)
	}
	if err := h.Users.Delete(ctx, userID); err != nil {
		return httperr.Internal(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func validateNewUser(req createUserReq) []string {
	var msgs []string
	if !validate.Username(req.Username) {
		msgs = append(msgs, "username: must be 3-50 letters, digits or underscores")
	}
	if !validate.Password(req.Password) {
		msgs = append(msgs, "password: must be 8-50 characters")
	}
	if !validate.Email(req.Email) {
		msgs = append(msgs, "email: must be a valid address")
	}
	return msgs
}

func validateUserUpdate(req updateUserReq) []string {
	var msgs []string
	if req.Username != nil && !validate.Username(strings.TrimSpace(*req.Username)) {
		msgs = append(msgs, "username: must be 3-50 letters, digits or underscores")
	}
	if req.Password != nil && !validate.Password(*req.Password) {
		msgs = append(msgs, "password: must be 8-50 characters")
	}
	if req.Email != nil && !validate.Email(strings.TrimSpace(*req.Email)) {
		msgs = append(msgs, "email: must be a valid address")
	}
	for _, r := range req.Roles {
		if r != model.RoleAdmin && r != model.RoleUser {
			msgs = append(msgs, "roles: unknown role "+r)
		}
	}
	return msgs
}
