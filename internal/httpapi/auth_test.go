package httpapi

import (
	"testing"
	"time"

	"saboaria/backend/internal/domain"
	"saboaria/backend/internal/store/memory"
)

func newTestAuth(t *testing.T) *AuthManager {
	t.Helper()
	t.Setenv("SEED_OWNER_PASSWORD", "super-secret-1")
	return NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour, memory.New())
}

func TestLoginIssuesParseableToken(t *testing.T) {
	auth := newTestAuth(t)

	resp, err := auth.Login(domain.LoginRequest{Username: "owner", Password: "super-secret-1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.AccessToken == "" || resp.Role != "owner" {
		t.Fatalf("unexpected login response: %+v", resp)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.Username != "owner" || actor.Role != "owner" {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := newTestAuth(t)

	if _, err := auth.Login(domain.LoginRequest{Username: "owner", Password: "wrong"}); err == nil {
		t.Fatalf("wrong password must be rejected")
	}
	if _, err := auth.Login(domain.LoginRequest{Username: "nobody", Password: "super-secret-1"}); err == nil {
		t.Fatalf("unknown user must be rejected")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	auth := newTestAuth(t)

	if _, err := auth.ParseToken("not-a-token"); err == nil {
		t.Fatalf("garbage token must be rejected")
	}

	other := NewAuthManager("another-secret-another-secret-xx", time.Hour, nil)
	resp, err := newTestAuth(t).Login(domain.LoginRequest{Username: "owner", Password: "super-secret-1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := other.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("token signed with a different secret must be rejected")
	}
}
