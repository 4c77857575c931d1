package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/craftdeal/craftdeal/internal/domain/model"
)

// ProfileRepository describes persistence operations with principal profiles.
type ProfileRepository interface {
	Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.Profile, error)
	GetByLogin(ctx context.Context, login string) (*model.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

// ProviderRepository resolves the secondary provider records.
type ProviderRepository interface {
	Create(ctx context.Context, profileID uuid.UUID, displayName string) (*model.Provider, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Provider, error)
	GetByProfile(ctx context.Context, profileID uuid.UUID) (*model.Provider, error)
}
