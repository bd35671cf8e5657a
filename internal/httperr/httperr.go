// Package httperr renders the service's structured error body. Every
// error response carries a status marker, user-facing messages, debug
// messages and a timestamp. Internal detail goes only into the debug
// list, never the user-facing one.
package httperr

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Body is the JSON error object returned by every failing endpoint.
type Body struct {
	Status        string    `json:"status"`
	UserMessages  []string  `json:"user_messages"`
	DebugMessages []string  `json:"debug_messages"`
	CreatedOn     time.Time `json:"created_on"`
}

// JSON writes an error body for the given HTTP status code. The
// status marker is derived from the code ("FORBIDDEN", "NOT_FOUND",
// ...). debug may be empty, in which case the user messages are
// repeated there.
func JSON(c echo.Context, code int, userMessages []string, debugMessages []string) error {
	if len(debugMessages) == 0 {
		debugMessages = userMessages
	}
	return c.JSON(code, Body{
		Status:        statusMarker(code),
		UserMessages:  userMessages,
		DebugMessages: debugMessages,
		CreatedOn:     time.Now().UTC(),
	})
}

// BadRequest reports a malformed or invalid request body.
func BadRequest(c echo.Context, messages ...string) error {
	return JSON(c, http.StatusBadRequest, messages, nil)
}

// Unauthorized reports a missing or failed authentication. debug
// carries the precise cause, the user message stays generic.
func Unauthorized(c echo.Context, userMessage, debugMessage string) error {
	return JSON(c, http.StatusUnauthorized, []string{userMessage}, []string{debugMessage})
}

// Forbidden reports a policy denial.
func Forbidden(c echo.Context, debugMessage string) error {
	return JSON(c, http.StatusForbidden, []string{"Access is denied"}, []string{debugMessage})
}

// NotFound reports a missing resource.
func NotFound(c echo.Context, message string) error {
	return JSON(c, http.StatusNotFound, []string{message}, nil)
}

// Conflict reports a uniqueness or state conflict.
func Conflict(c echo.Context, message string) error {
	return JSON(c, http.StatusConflict, []string{message}, nil)
}

// Internal reports an unanticipated failure. The underlying error is
// preserved in the debug list only.
func Internal(c echo.Context, err error) error {
	debug := []string{"internal error"}
	if err != nil {
		debug = []string{err.Error()}
	}
	return JSON(c, http.StatusInternalServerError,
		[]string{"An internal error occurred"}, debug)
}

func statusMarker(code int) string {
	return strings.ReplaceAll(strings.ToUpper(http.StatusText(code)), " ", "_")
}
