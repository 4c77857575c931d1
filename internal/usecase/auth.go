package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
	"github.com/craftdeal/craftdeal/internal/domain/repository"
	pkgAuth "github.com/craftdeal/craftdeal/internal/pkg/auth"
)

// AuthUseCase handles profile lifecycle and token management.
type AuthUseCase struct {
	profiles  repository.ProfileRepository
	providers repository.ProviderRepository
	hasher    pkgAuth.PasswordHasher
	tokens    pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(profiles repository.ProfileRepository, providers repository.ProviderRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{profiles: profiles, providers: providers, hasher: hasher, tokens: strategy}
}

// Register creates a new profile and returns an auth token. Providers also get
// their secondary provider record. Admin profiles are seeded out of band, never
// through registration.
func (u *AuthUseCase) Register(ctx context.Context, login, password string, role model.Role, displayName string) (*model.Profile, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}
	if role != model.RoleClient && role != model.RoleProvider {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	profile, err := u.profiles.Create(ctx, login, hash, role)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, "", domainErrors.ErrAlreadyExists
		}
		return nil, "", err
	}

	if role == model.RoleProvider {
		name := strings.TrimSpace(displayName)
		if name == "" {
			name = login
		}
		if _, err := u.providers.Create(ctx, profile.ID, name); err != nil {
			return nil, "", err
		}
	}

	token, err := u.tokens.IssueToken(profile.ID, profile.Role)
	if err != nil {
		return nil, "", err
	}

	return profile, token, nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.Profile, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	profile, err := u.profiles.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(profile.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(profile.ID, profile.Role)
	if err != nil {
		return nil, "", err
	}

	return profile, token, nil
}

// ParseToken extracts the profile id and role from the provided token.
func (u *AuthUseCase) ParseToken(token string) (uuid.UUID, model.Role, error) {
	if token == "" {
		return uuid.Nil, "", pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches a profile by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return u.profiles.GetByID(ctx, id)
}
