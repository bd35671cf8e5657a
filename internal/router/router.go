package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/taskstack/todo-service/internal/auth"       // token validation for the identity middleware
	"github.com/taskstack/todo-service/internal/handler"    // import the handlers that implement business logic
	"github.com/taskstack/todo-service/internal/middleware" // identity construction and policy enforcement
)

// Register wires every route of the service onto the provided Echo
// instance. The Authenticate middleware runs for all requests and
// builds the per-request identity; each protected route then names
// the policy that gates it. Sign-up, login and the health check are
// the only public endpoints.
func Register(e *echo.Echo, v *auth.Validator, a *handler.AuthHandler, u *handler.UserHandler, t *handler.TodoHandler) {
	e.Use(middleware.Authenticate(v))

	e.GET("/healthz", handler.Health)

	// Public: account creation and login.
	e.POST("/users", u.Register)
	e.POST("/logins", a.CreateLogin)

	admin := middleware.Authorize("admin", middleware.AdminOnly)
	adminOrOwner := middleware.Authorize("admin-or-owner", middleware.AdminOrOwner("userId"))

	// Users. The profile update route carries no route-level policy:
	// its rule depends on the request body, so the handler checks it
	// right after binding.
	e.GET("/users", u.ListUsers, admin)
	e.GET("/users/:userId", u.GetUser, adminOrOwner)
	e.PUT("/users/:userId", u.UpdateUser)
	e.DELETE("/users/:userId", u.DeleteUser, admin)

	// Logins (sessions).
	e.GET("/logins", a.ListLogins, admin)
	e.DELETE("/logins/:loginId", a.DeleteLogin, admin)
	e.GET("/users/:userId/logins", a.ListLoginsForUser, adminOrOwner)
	e.DELETE("/users/:userId/logins", a.DeleteLoginsForUser, adminOrOwner)
	e.DELETE("/users/:userId/logins/:loginId", a.DeleteLoginForUser, adminOrOwner)

	// Todos.
	e.GET("/todos", t.ListTodos, admin)
	e.GET("/todos/:todoId", t.GetTodo, admin)
	e.GET("/users/:userId/todos", t.ListTodosForUser, adminOrOwner)
	e.POST("/users/:userId/todos", t.CreateTodoForUser, adminOrOwner)
	e.GET("/users/:userId/todos/:todoId", t.GetTodoForUser, adminOrOwner)
	e.PUT("/users/:userId/todos/:todoId", t.UpdateTodoForUser, adminOrOwner)
	e.DELETE("/users/:userId/todos/:todoId", t.DeleteTodoForUser, adminOrOwner)
}
