package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskstack/todo-service/internal/auth"
	"github.com/taskstack/todo-service/internal/httperr"
	"github.com/taskstack/todo-service/internal/middleware"
	"github.com/taskstack/todo-service/internal/model"
)

// dbTimeout bounds every store call made from a handler.
const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for login/session endpoints.
type AuthHandler struct {
	Issuer *auth.Issuer
	Logins auth.LoginStore
	Users  UserStore
}

func NewAuthHandler(issuer *auth.Issuer, logins auth.LoginStore, users UserStore) *AuthHandler {
	return &AuthHandler{Issuer: issuer, Logins: logins, Users: users}
}

// ----- DTOs -----

type createLoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginDto struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	AuthToken string    `json:"auth_token"`
	CreatedOn time.Time `json:"created_on"`
	ExpiresOn time.Time `json:"expires_on"`
}

func mapLogin(l model.Login) loginDto {
	return loginDto{
		ID:        l.ID,
		UserID:    l.UserID,
		AuthToken: l.AuthToken,
		CreatedOn: l.CreatedOn,
		ExpiresOn: l.ExpiresOn,
	}
}

// CreateLogin verifies a username/password pair and issues a session
// token. This is the one path where an authentication failure is
// surfaced instead of flattened: the caller explicitly asked for a
// credential check. The user-facing message stays the same whichever
// part of the credentials was wrong.
func (h *AuthHandler) CreateLogin(c echo.Context) error {
	var req createLoginReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest(c, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return httperr.BadRequest(c, "username and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	login, err := h.Issuer.Issue(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			return httperr.Unauthorized(c, "Bad credentials were provided", err.Error())
		}
		return httperr.Internal(c, err)
	}
	h.recordLastLogin(ctx, login.UserID, login.CreatedOn)
	log.Printf("user %d logged in (login %d)", login.UserID, login.ID)
	return c.JSON(http.StatusOK, mapLogin(login))
}

// ListLogins returns every live and expired session row. Admin only.
func (h *AuthHandler) ListLogins(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	logins, err := h.Logins.FindAll(ctx)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, mapLogins(logins))
}

// ListLoginsForUser returns the sessions of one user. Admin or owner.
func (h *AuthHandler) ListLoginsForUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return httperr.BadRequest(c, "invalid user id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	logins, err := h.Logins.FindAllForUser(ctx, userID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(http.StatusOK, mapLogins(logins))
}

// DeleteLogin removes a single session by its id. Admin only.
func (h *AuthHandler) DeleteLogin(c echo.Context) error {
	loginID, err := pathID(c, "loginId")
	if err != nil {
		return httperr.BadRequest(c, "invalid login id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Logins.FindByID(ctx, loginID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return httperr.NotFound(c, "login not found")
		}
		return httperr.Internal(c, err)
	}
	if err := h.Logins.Delete(ctx, loginID); err != nil {
		return httperr.Internal(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteLoginForUser removes one session of one user. The login must
// belong to the named user or the endpoint reports not-found, never
// whose session the id actually is.
func (h *AuthHandler) DeleteLoginForUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return httperr.BadRequest(c, "invalid user id")
	}
	loginID, err := pathID(c, "loginId")
	if err != nil {
		return httperr.BadRequest(c, "invalid login id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	login, err := h.Logins.FindByID(ctx, loginID)
	if err != nil || login.UserID != userID {
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return httperr.Internal(c, err)
		}
		return httperr.NotFound(c, "login not found")
	}
	if err := h.Logins.Delete(ctx, loginID); err != nil {
		return httperr.Internal(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteLoginsForUser logs a user out of every session at once.
func (h *AuthHandler) DeleteLoginsForUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return httperr.BadRequest(c, "invalid user id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	deleted, err := h.Logins.DeleteAllForUser(ctx, userID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	log.Printf("logging out user %d, deleted %d tokens", userID, deleted)
	return c.NoContent(http.StatusNoContent)
}

// recordLastLogin stamps users.last_login_on. Best effort: a failed
// write is logged and never fails the login itself.
func (h *AuthHandler) recordLastLogin(ctx context.Context, userID uint64, at time.Time) {
	u, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		log.Printf("record last login for user %d: %v", userID, err)
		return
	}
	u.LastLoginOn = &at
	if err := h.Users.Update(ctx, u); err != nil {
		log.Printf("record last login for user %d: %v", userID, err)
	}
}

func mapLogins(logins []model.Login) []loginDto {
	out := make([]loginDto, 0, len(logins))
	for _, l := range logins {
		out = append(out, mapLogin(l))
	}
	return out
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// identity returns the caller's identity built by the middleware.
func identity(c echo.Context) auth.Identity {
	return middleware.IdentityFrom(c)
}
