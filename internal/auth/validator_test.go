package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskstack/todo-service/internal/auth"
	"github.com/taskstack/todo-service/internal/model"
)

func TestValidateUnknownToken(t *testing.T) {
	users, logins, _, _ := fixture(t)
	validator := auth.NewValidator(users, logins)

	id, err := validator.Validate(context.Background(), "no-such-token")
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
	if id.IsAuthenticated() {
		t.Error("failed validation returned an authenticated identity")
	}
}

func TestValidateExpiryBoundary(t *testing.T) {
	users, logins, alice, _ := fixture(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	login, err := logins.Insert(context.Background(), model.Login{
		UserID:    alice.ID,
		AuthToken: "boundary-token",
		CreatedOn: now.Add(-testTTL),
		ExpiresOn: now,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	validator := auth.NewValidator(users, logins)

	// One instant before expiry the token is still good.
	validator.Now = func() time.Time { return now.Add(-time.Nanosecond) }
	if _, err := validator.Validate(context.Background(), login.AuthToken); err != nil {
		t.Fatalf("Validate just before expiry: %v", err)
	}

	// At exact equality "not strictly after now" must reject.
	validator.Now = func() time.Time { return now }
	if _, err := validator.Validate(context.Background(), login.AuthToken); !errors.Is(err, auth.ErrExpiredToken) {
		t.Fatalf("err at expires_on == now: %v, want ErrExpiredToken", err)
	}

	validator.Now = func() time.Time { return now.Add(time.Hour) }
	if _, err := validator.Validate(context.Background(), login.AuthToken); !errors.Is(err, auth.ErrExpiredToken) {
		t.Fatalf("err past expiry: %v, want ErrExpiredToken", err)
	}
}

func TestValidateExpiredTokenStaysExpired(t *testing.T) {
	users, logins, _, _ := fixture(t)
	issuer := auth.NewIssuer(users, logins, testTTL)
	validator := auth.NewValidator(users, logins)

	login, err := issuer.Issue(context.Background(), "alice", "alicepassword")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := validator.Validate(context.Background(), login.AuthToken); err != nil {
		t.Fatalf("Validate fresh token: %v", err)
	}

	logins.SetExpiry(login.ID, time.Now().Add(-time.Minute))

	for i := 0; i < 2; i++ {
		if _, err := validator.Validate(context.Background(), login.AuthToken); !errors.Is(err, auth.ErrExpiredToken) {
			t.Fatalf("attempt %d: err = %v, want ErrExpiredToken", i, err)
		}
	}
}

func TestValidateDeletedOwner(t *testing.T) {
	users, logins, alice, _ := fixture(t)
	issuer := auth.NewIssuer(users, logins, testTTL)
	validator := auth.NewValidator(users, logins)

	login, err := issuer.Issue(context.Background(), "alice", "alicepassword")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	users.Remove(alice.ID)

	id, err := validator.Validate(context.Background(), login.AuthToken)
	if !errors.Is(err, auth.ErrUnknownPrincipal) {
		t.Fatalf("err = %v, want ErrUnknownPrincipal", err)
	}
	if id.IsAuthenticated() {
		t.Error("orphaned token validated as authenticated")
	}
}

func TestValidateReadsRolesLive(t *testing.T) {
	users, logins, alice, _ := fixture(t)
	issuer := auth.NewIssuer(users, logins, testTTL)
	validator := auth.NewValidator(users, logins)

	login, err := issuer.Issue(context.Background(), "alice", "alicepassword")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	id, err := validator.Validate(context.Background(), login.AuthToken)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if id.HasRole(model.RoleAdmin) {
		t.Fatal("alice unexpectedly admin")
	}

	// Promotion takes effect on the very next validation, without a
	// new token.
	users.SetRoles(alice.ID, []string{model.RoleAdmin, model.RoleUser})
	id, err = validator.Validate(context.Background(), login.AuthToken)
	if err != nil {
		t.Fatalf("Validate after promotion: %v", err)
	}
	if !id.HasRole(model.RoleAdmin) {
		t.Error("promotion not visible on next validation")
	}
}

func TestDeleteAllForUserLeavesOthersIntact(t *testing.T) {
	users, logins, alice, _ := fixture(t)
	issuer := auth.NewIssuer(users, logins, testTTL)
	validator := auth.NewValidator(users, logins)

	var aliceTokens []string
	for i := 0; i < 3; i++ {
		l, err := issuer.Issue(context.Background(), "alice", "alicepassword")
		if err != nil {
			t.Fatalf("Issue alice #%d: %v", i, err)
		}
		aliceTokens = append(aliceTokens, l.AuthToken)
	}
	adminLogin, err := issuer.Issue(context.Background(), "root", "rootpassword")
	if err != nil {
		t.Fatalf("Issue admin: %v", err)
	}

	n, err := logins.DeleteAllForUser(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("DeleteAllForUser: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted %d rows, want 3", n)
	}

	for _, tok := range aliceTokens {
		if _, err := validator.Validate(context.Background(), tok); !errors.Is(err, auth.ErrInvalidToken) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidToken", tok, err)
		}
	}
	if _, err := validator.Validate(context.Background(), adminLogin.AuthToken); err != nil {
		t.Errorf("admin token affected by alice's logout: %v", err)
	}
}
