package middleware // middleware provides shared request processing for handlers

import (
	"strconv" // strconv parses numeric path parameters

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/taskstack/todo-service/internal/auth"    // policy functions over the identity
	"github.com/taskstack/todo-service/internal/httperr" // structured error bodies
)

// Policy decides whether the identified caller may run the routes it
// guards.  Policies read path parameters from the context when the
// rule depends on the target resource's owner.
type Policy func(c echo.Context, id auth.Identity) bool

// Authorize returns a middleware enforcing the given policy.  An
// anonymous identity is rejected with 401 before the policy runs; an
// authenticated identity failing the policy gets 403.  Either way the
// handler body never executes, so a denied request has zero side
// effects.
func Authorize(name string, policy Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFrom(c)
			if !id.IsAuthenticated() {
				return httperr.Unauthorized(c, "Authentication is required",
					auth.ErrAuthenticationRequired.Error())
			}
			if !policy(c, id) {
				return httperr.Forbidden(c, "policy "+name+" denied the request")
			}
			return next(c)
		}
	}
}

// AdminOnly allows only callers holding the ADMIN role.
func AdminOnly(_ echo.Context, id auth.Identity) bool {
	return auth.IsAdmin(id)
}

// AdminOrOwner allows admins, plus the caller whose user id equals
// the named path parameter.  An unparseable parameter denies.
func AdminOrOwner(param string) Policy {
	return func(c echo.Context, id auth.Identity) bool {
		userID, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil {
			return false
		}
		return auth.IsAdminOrOwner(id, userID)
	}
}
