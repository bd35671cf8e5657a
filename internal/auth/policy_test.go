package auth_test

import (
	"testing"

	"github.com/taskstack/todo-service/internal/auth"
	"github.com/taskstack/todo-service/internal/model"
)

var (
	anon      = auth.Anonymous()
	userFive  = auth.Authenticated("tok-5", 5, []string{model.RoleUser})
	adminNine = auth.Authenticated("tok-9", 9, []string{model.RoleAdmin, model.RoleUser})
)

func TestIsAdmin(t *testing.T) {
	cases := []struct {
		name string
		id   auth.Identity
		want bool
	}{
		{"anonymous", anon, false},
		{"plain user", userFive, false},
		{"admin", adminNine, true},
	}
	for _, tc := range cases {
		if got := auth.IsAdmin(tc.id); got != tc.want {
			t.Errorf("%s: IsAdmin = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsAdminOrOwner(t *testing.T) {
	cases := []struct {
		name   string
		id     auth.Identity
		target uint64
		want   bool
	}{
		{"anonymous never passes", anon, 5, false},
		{"anonymous not even for zero id", anon, 0, false},
		{"owner on own resource", userFive, 5, true},
		{"owner on someone else's", userFive, 9, false},
		{"admin on anyone's", adminNine, 5, true},
		{"admin on own", adminNine, 9, true},
	}
	for _, tc := range cases {
		if got := auth.IsAdminOrOwner(tc.id, tc.target); got != tc.want {
			t.Errorf("%s: IsAdminOrOwner = %v, want %v", tc.name, got, tc.want)
		}
		// The compound must always equal the disjunction of its parts.
		want := auth.IsAdmin(tc.id) || auth.IsOwner(tc.id, tc.target)
		if got := auth.IsAdminOrOwner(tc.id, tc.target); got != want {
			t.Errorf("%s: IsAdminOrOwner disagrees with IsAdmin||IsOwner", tc.name)
		}
	}
}

func TestCanUpdateUser(t *testing.T) {
	cases := []struct {
		name         string
		id           auth.Identity
		target       uint64
		touchesRoles bool
		want         bool
	}{
		{"anonymous", anon, 5, false, false},
		{"owner plain update", userFive, 5, false, true},
		// Presence of a roles field denies the owner even when the
		// value would be identical to the current roles.
		{"owner touching roles", userFive, 5, true, false},
		{"non-owner plain update", userFive, 9, false, false},
		{"admin touching roles", adminNine, 5, true, true},
		{"admin touching own roles", adminNine, 9, true, true},
	}
	for _, tc := range cases {
		if got := auth.CanUpdateUser(tc.id, tc.target, tc.touchesRoles); got != tc.want {
			t.Errorf("%s: CanUpdateUser = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIdentityAccessors(t *testing.T) {
	if anon.IsAuthenticated() {
		t.Error("anonymous identity claims to be authenticated")
	}
	if anon.HasRole(model.RoleUser) {
		t.Error("anonymous identity carries a role")
	}
	if userFive.UserID() != 5 || userFive.Token() != "tok-5" {
		t.Errorf("identity lost its fields: %+v", userFive)
	}

	// Mutating the returned role slice must not affect the identity.
	roles := adminNine.Roles()
	roles[0] = "MANGLED"
	if !adminNine.HasRole(model.RoleAdmin) {
		t.Error("Roles() exposed internal state")
	}

	// Nor may the slice the identity was constructed from: the
	// constructor must take its own copy.
	input := []string{model.RoleAdmin}
	id := auth.Authenticated("tok", 1, input)
	input[0] = "MANGLED"
	if !id.HasRole(model.RoleAdmin) {
		t.Error("Authenticated retained the caller's slice")
	}
}
