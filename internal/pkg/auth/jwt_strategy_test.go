package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/craftdeal/craftdeal/internal/domain/model"
)

func TestNewJWTStrategy_DefaultTTL(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	if strategy == nil {
		t.Fatal("expected strategy instance")
	}
	if string(strategy.secret) != "secret" {
		t.Fatalf("unexpected secret: %q", string(strategy.secret))
	}
	if strategy.ttl != 24*time.Hour {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestJWTStrategy_IssueAndParse(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})
	profileID := uuid.New()

	token, err := strategy.IssueToken(profileID, model.RoleProvider)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	gotID, gotRole, err := strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if gotID != profileID {
		t.Fatalf("expected profile id %s, got %s", profileID, gotID)
	}
	if gotRole != model.RoleProvider {
		t.Fatalf("expected provider role, got %s", gotRole)
	}
}

func TestJWTStrategy_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTStrategy("secret-a", Options{TTL: time.Minute})
	verifier := NewJWTStrategy("secret-b", Options{TTL: time.Minute})

	token, err := issuer.IssueToken(uuid.New(), model.RoleClient)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, _, err := verifier.ParseToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_RejectsExpired(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: -time.Minute})

	token, err := strategy.IssueToken(uuid.New(), model.RoleClient)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, _, err := strategy.ParseToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestJWTStrategy_RejectsUnknownRole(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})

	token, err := strategy.IssueToken(uuid.New(), model.Role("superuser"))
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, _, err := strategy.ParseToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for unknown role, got %v", err)
	}
}

func TestJWTStrategy_RejectsGarbage(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})
	if _, _, err := strategy.ParseToken("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if strategy.Name() != "jwt" {
		t.Fatalf("unexpected strategy name: %s", strategy.Name())
	}
}
