// Package authtest provides in-memory implementations of the auth
// store interfaces for tests. They mirror the MySQL repositories'
// observable behavior: absent rows come back as sql.ErrNoRows and a
// token value collision on insert comes back as ErrDuplicateToken.
package authtest

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/taskstack/todo-service/internal/auth"
	"github.com/taskstack/todo-service/internal/model"
)

// Users is an in-memory auth.UserDirectory.
type Users struct {
	mu     sync.Mutex
	byID   map[uint64]model.User
	nextID uint64
}

func NewUsers() *Users {
	return &Users{byID: map[uint64]model.User{}}
}

// Add stores a user, assigning an id when none is set, and returns it.
func (s *Users) Add(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		s.nextID++
		u.ID = s.nextID
	}
	s.byID[u.ID] = u
	return u
}

// Remove deletes a user, simulating an account deleted after a token
// was issued.
func (s *Users) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

// SetRoles replaces a user's role set in place.
func (s *Users) SetRoles(id uint64, roles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return
	}
	u.Roles = roles
	s.byID[id] = u
}

func (s *Users) FindByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *Users) FindByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

// Logins is an in-memory auth.LoginStore.
type Logins struct {
	mu     sync.Mutex
	byID   map[uint64]model.Login
	nextID uint64

	// InsertErrs, when non-empty, is popped on each Insert call and
	// returned instead of performing the insert. Lets tests force a
	// duplicate-token failure on the first attempt.
	InsertErrs []error
}

func NewLogins() *Logins {
	return &Logins{byID: map[uint64]model.Login{}}
}

func (s *Logins) FindByToken(_ context.Context, token string) (model.Login, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.byID {
		if l.AuthToken == token {
			return l, nil
		}
	}
	return model.Login{}, sql.ErrNoRows
}

func (s *Logins) FindByID(_ context.Context, id uint64) (model.Login, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok {
		return model.Login{}, sql.ErrNoRows
	}
	return l, nil
}

func (s *Logins) FindAll(_ context.Context) ([]model.Login, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Login, 0, len(s.byID))
	for _, l := range s.byID {
		out = append(out, l)
	}
	return out, nil
}

func (s *Logins) FindAllForUser(_ context.Context, userID uint64) ([]model.Login, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Login
	for _, l := range s.byID {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Logins) Insert(_ context.Context, login model.Login) (model.Login, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.InsertErrs) > 0 {
		err := s.InsertErrs[0]
		s.InsertErrs = s.InsertErrs[1:]
		return model.Login{}, err
	}
	for _, l := range s.byID {
		if l.AuthToken == login.AuthToken {
			return model.Login{}, auth.ErrDuplicateToken
		}
	}
	s.nextID++
	login.ID = s.nextID
	s.byID[login.ID] = login
	return login, nil
}

func (s *Logins) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *Logins) DeleteAllForUser(_ context.Context, userID uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, l := range s.byID {
		if l.UserID == userID {
			delete(s.byID, id)
			n++
		}
	}
	return n, nil
}

// SetExpiry rewrites a login's expiry, letting tests push an issued
// token past its lifetime without a fake clock.
func (s *Logins) SetExpiry(id uint64, expiresOn time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok {
		return
	}
	l.ExpiresOn = expiresOn
	s.byID[id] = l
}
