package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
	pkgAuth "github.com/craftdeal/craftdeal/internal/pkg/auth"
	testhelpers "github.com/craftdeal/craftdeal/internal/test"
	"github.com/craftdeal/craftdeal/internal/usecase"
)

func newStrategyStub() testhelpers.StrategyStub {
	return testhelpers.StrategyStub{
		IssueFn: func(profileID uuid.UUID, role model.Role) (string, error) {
			return "token-" + profileID.String() + "-" + string(role), nil
		},
		ParseFn: func(token string) (uuid.UUID, model.Role, error) {
			if token == "" {
				return uuid.Nil, "", pkgAuth.ErrInvalidToken
			}
			return uuid.Nil, model.RoleClient, nil
		},
	}
}

func TestAuthUseCaseRegisterClient(t *testing.T) {
	profiles := testhelpers.NewProfileRepositoryStub()
	providers := testhelpers.NewProviderRepositoryStub()
	uc := usecase.NewAuthUseCase(profiles, providers, testhelpers.HasherStub{}, newStrategyStub())

	ctx := context.Background()
	profile, token, err := uc.Register(ctx, "alice", "password", model.RoleClient, "")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if profile.ID == uuid.Nil {
		t.Fatalf("expected profile to have id assigned")
	}
	if token == "" {
		t.Fatalf("expected token")
	}

	stored, err := profiles.GetByLogin(ctx, "alice")
	if err != nil {
		t.Fatalf("expected profile in repository: %v", err)
	}
	if stored.PasswordHash != "hash:password" {
		t.Fatalf("password hash not stored: %v", stored.PasswordHash)
	}
	if _, err := providers.GetByProfile(ctx, profile.ID); err != domainErrors.ErrNotFound {
		t.Fatalf("client must not get a provider record, got %v", err)
	}
}

func TestAuthUseCaseRegisterProviderCreatesRecord(t *testing.T) {
	profiles := testhelpers.NewProfileRepositoryStub()
	providers := testhelpers.NewProviderRepositoryStub()
	uc := usecase.NewAuthUseCase(profiles, providers, testhelpers.HasherStub{}, newStrategyStub())

	ctx := context.Background()
	profile, _, err := uc.Register(ctx, "bob", "secret", model.RoleProvider, "Bob's Pottery")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	provider, err := providers.GetByProfile(ctx, profile.ID)
	if err != nil {
		t.Fatalf("expected provider record: %v", err)
	}
	if provider.DisplayName != "Bob's Pottery" {
		t.Fatalf("unexpected display name %q", provider.DisplayName)
	}
	if provider.ID == profile.ID {
		t.Fatalf("provider record id must be distinct from profile id")
	}
}

func TestAuthUseCaseRegisterRejectsAdminRole(t *testing.T) {
	uc := usecase.NewAuthUseCase(testhelpers.NewProfileRepositoryStub(), testhelpers.NewProviderRepositoryStub(), testhelpers.HasherStub{}, newStrategyStub())

	if _, _, err := uc.Register(context.Background(), "eve", "pass", model.RoleAdmin, ""); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthUseCaseRegisterDuplicate(t *testing.T) {
	uc := usecase.NewAuthUseCase(testhelpers.NewProfileRepositoryStub(), testhelpers.NewProviderRepositoryStub(), testhelpers.HasherStub{}, newStrategyStub())

	ctx := context.Background()
	if _, _, err := uc.Register(ctx, "bob", "secret", model.RoleClient, ""); err != nil {
		t.Fatalf("unexpected error on first register: %v", err)
	}
	if _, _, err := uc.Register(ctx, "bob", "secret", model.RoleClient, ""); err != domainErrors.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAuthUseCaseAuthenticate(t *testing.T) {
	uc := usecase.NewAuthUseCase(testhelpers.NewProfileRepositoryStub(), testhelpers.NewProviderRepositoryStub(), testhelpers.HasherStub{}, newStrategyStub())

	ctx := context.Background()
	if _, _, err := uc.Register(ctx, "carol", "123456", model.RoleClient, ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, err := uc.Authenticate(ctx, "carol", "bad"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
	if _, _, err := uc.Authenticate(ctx, "nobody", "123456"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials for unknown login, got %v", err)
	}

	profile, token, err := uc.Authenticate(ctx, "carol", "123456")
	if err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}
	if token == "" || profile.Login != "carol" {
		t.Fatalf("unexpected authenticate result: %q %+v", token, profile)
	}
}

func TestAuthUseCaseParseTokenEmpty(t *testing.T) {
	uc := usecase.NewAuthUseCase(testhelpers.NewProfileRepositoryStub(), testhelpers.NewProviderRepositoryStub(), testhelpers.HasherStub{}, newStrategyStub())

	if _, _, err := uc.ParseToken(""); err != pkgAuth.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
