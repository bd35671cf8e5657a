package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskstack/todo-service/internal/auth"
	"github.com/taskstack/todo-service/internal/auth/authtest"
	"github.com/taskstack/todo-service/internal/handler"
	"github.com/taskstack/todo-service/internal/middleware"
	"github.com/taskstack/todo-service/internal/model"
	"github.com/taskstack/todo-service/internal/queue"
	"github.com/taskstack/todo-service/internal/repository"
	"github.com/taskstack/todo-service/internal/router"
)

// memUsers implements handler.UserStore plus auth.UserDirectory with
// the same observable behavior as the MySQL repository.
type memUsers struct {
	mu     sync.Mutex
	byID   map[uint64]model.User
	nextID uint64
}

func newMemUsers() *memUsers { return &memUsers{byID: map[uint64]model.User{}} }

func (s *memUsers) Create(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.byID {
		if e.Username == u.Username {
			return model.User{}, repository.ErrUsernameExists
		}
	}
	s.nextID++
	u.ID = s.nextID
	s.byID[u.ID] = u
	return u, nil
}

func (s *memUsers) FindByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *memUsers) FindByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (s *memUsers) FindAll(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, u)
	}
	return out, nil
}

func (s *memUsers) Update(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.byID {
		if id != u.ID && e.Username == u.Username {
			return repository.ErrUsernameExists
		}
	}
	s.byID[u.ID] = u
	return nil
}

func (s *memUsers) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

// memTodos implements handler.TodoStore.
type memTodos struct {
	mu     sync.Mutex
	byID   map[uint64]model.Todo
	nextID uint64
}

func newMemTodos() *memTodos { return &memTodos{byID: map[uint64]model.Todo{}} }

func (s *memTodos) Create(_ context.Context, t model.Todo) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t.ID = s.nextID
	s.byID[t.ID] = t
	return t, nil
}

func (s *memTodos) FindByID(_ context.Context, id uint64) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return model.Todo{}, sql.ErrNoRows
	}
	return t, nil
}

func (s *memTodos) FindByIDAndUser(_ context.Context, id, userID uint64) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok || t.UserID != userID {
		return model.Todo{}, sql.ErrNoRows
	}
	return t, nil
}

func (s *memTodos) FindAll(_ context.Context) ([]model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Todo, 0, len(s.byID))
	for _, t := range s.byID {
		out = append(out, t)
	}
	return out, nil
}

func (s *memTodos) FindAllForUser(_ context.Context, userID uint64) ([]model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Todo
	for _, t := range s.byID {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memTodos) Update(_ context.Context, t model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[t.ID]
	if !ok || e.UserID != t.UserID {
		return sql.ErrNoRows
	}
	s.byID[t.ID] = t
	return nil
}

func (s *memTodos) Delete(_ context.Context, id, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.byID[id]; ok && t.UserID == userID {
		delete(s.byID, id)
	}
	return nil
}

// server is a fully wired service over in-memory stores.
type server struct {
	e         *echo.Echo
	users     *memUsers
	logins    *authtest.Logins
	todos     *memTodos
	issuer    *auth.Issuer
	published []queue.TodoCompletedEvent
}

func newServer(t *testing.T) *server {
	t.Helper()
	s := &server{
		users:  newMemUsers(),
		logins: authtest.NewLogins(),
		todos:  newMemTodos(),
	}
	s.issuer = auth.NewIssuer(s.users, s.logins, 30*time.Minute)
	validator := auth.NewValidator(s.users, s.logins)

	publish := func(_ context.Context, ev queue.TodoCompletedEvent) error {
		s.published = append(s.published, ev)
		return nil
	}

	s.e = echo.New()
	router.Register(s.e,
		validator,
		handler.NewAuthHandler(s.issuer, s.logins, s.users),
		handler.NewUserHandler(s.users, bcrypt.MinCost),
		handler.NewTodoHandler(s.todos, publish),
	)
	return s
}

// seedUser inserts a user directly into the store with a real bcrypt
// hash so the login endpoint can verify the password.
func (s *server) seedUser(t *testing.T, username, password string, roles []string) model.User {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	u, err := s.users.Create(context.Background(), model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(h),
		Roles:        roles,
		CreatedOn:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

// login drives POST /logins and returns the issued token value.
func (s *server) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := s.request(t, http.MethodPost, "/logins", "", map[string]any{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d, body %s", username, rec.Code, rec.Body)
	}
	var body struct {
		AuthToken string `json:"auth_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal login response: %v", err)
	}
	if body.AuthToken == "" {
		t.Fatal("login response carries no token")
	}
	return body.AuthToken
}

// request performs an HTTP round trip against the wired router.
func (s *server) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}
