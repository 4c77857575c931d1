package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
	"github.com/craftdeal/craftdeal/internal/domain/repository"
)

// IdentityUseCase maps an authenticated principal to exactly one role on an
// order. Providers are referenced on orders by a secondary provider-record id,
// not by their profile id, so resolution needs an explicit fallback chain.
// The resolver performs no writes.
type IdentityUseCase struct {
	profiles  repository.ProfileRepository
	providers repository.ProviderRepository
	logger    *slog.Logger
}

// NewIdentityUseCase constructs IdentityUseCase.
func NewIdentityUseCase(profiles repository.ProfileRepository, providers repository.ProviderRepository, logger *slog.Logger) *IdentityUseCase {
	return &IdentityUseCase{profiles: profiles, providers: providers, logger: logger}
}

// ResolveOrderRole returns the single role the principal holds on the order.
// The chain is ordered and first match wins: admin profile, order client,
// provider by secondary id, provider by underlying profile id. No match is an
// authorization failure, never a default role.
func (u *IdentityUseCase) ResolveOrderRole(ctx context.Context, principalID uuid.UUID, order *model.Order) (model.Role, error) {
	profile, err := u.profiles.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.denied(principalID, order)
			return "", domainErrors.ErrAccessDenied
		}
		return "", err
	}

	if profile.Role == model.RoleAdmin {
		return model.RoleAdmin, nil
	}

	if order.ClientID == principalID {
		return model.RoleClient, nil
	}

	provider, err := u.providers.GetByProfile(ctx, principalID)
	switch {
	case err == nil:
		if provider.ID == order.ProviderID {
			return model.RoleProvider, nil
		}
	case !errors.Is(err, domainErrors.ErrNotFound):
		return "", err
	}

	// Fallback for denormalized data: the order-side provider record may point
	// back at the requesting principal even when the direct id match fails.
	orderProvider, err := u.providers.GetByID(ctx, order.ProviderID)
	switch {
	case err == nil:
		if orderProvider.ProfileID == principalID {
			return model.RoleProvider, nil
		}
	case !errors.Is(err, domainErrors.ErrNotFound):
		return "", err
	}

	u.denied(principalID, order)
	return "", domainErrors.ErrAccessDenied
}

// SubjectFor returns the ledger subject owned by the principal. Providers are
// funded under their provider-record id, everyone else under the profile id.
func (u *IdentityUseCase) SubjectFor(ctx context.Context, principalID uuid.UUID, role model.Role) (model.Subject, error) {
	if role == model.RoleProvider {
		provider, err := u.providers.GetByProfile(ctx, principalID)
		if err != nil {
			return model.Subject{}, err
		}
		return model.Subject{Type: model.SubjectProvider, ID: provider.ID}, nil
	}
	subjectType := model.SubjectClient
	if role == model.RoleAdmin {
		subjectType = model.SubjectAdmin
	}
	return model.Subject{Type: subjectType, ID: principalID}, nil
}

func (u *IdentityUseCase) denied(principalID uuid.UUID, order *model.Order) {
	u.logger.Warn("order role resolution denied",
		slog.String("principal_id", principalID.String()),
		slog.String("order_id", order.ID.String()),
		slog.String("order_client_id", order.ClientID.String()),
		slog.String("order_provider_id", order.ProviderID.String()),
	)
}
