package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
	testhelpers "github.com/craftdeal/craftdeal/internal/test"
	"github.com/craftdeal/craftdeal/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type identityFixture struct {
	profiles  *testhelpers.ProfileRepositoryStub
	providers *testhelpers.ProviderRepositoryStub
	identity  *usecase.IdentityUseCase

	admin    *model.Profile
	client   *model.Profile
	provider *model.Profile
	record   *model.Provider
	order    *model.Order
}

func newIdentityFixture() *identityFixture {
	f := &identityFixture{
		profiles:  testhelpers.NewProfileRepositoryStub(),
		providers: testhelpers.NewProviderRepositoryStub(),
	}
	f.identity = usecase.NewIdentityUseCase(f.profiles, f.providers, discardLogger())

	f.admin = f.profiles.Add(&model.Profile{Login: "admin", Role: model.RoleAdmin})
	f.client = f.profiles.Add(&model.Profile{Login: "client", Role: model.RoleClient})
	f.provider = f.profiles.Add(&model.Profile{Login: "provider", Role: model.RoleProvider})
	f.record = f.providers.Add(&model.Provider{ProfileID: f.provider.ID, DisplayName: "studio"})

	f.order = &model.Order{
		ID:         uuid.New(),
		ClientID:   f.client.ID,
		ProviderID: f.record.ID,
		Status:     model.OrderStatusPaid,
	}
	return f
}

func TestResolveOrderRoleAdmin(t *testing.T) {
	f := newIdentityFixture()
	role, err := f.identity.ResolveOrderRole(context.Background(), f.admin.ID, f.order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != model.RoleAdmin {
		t.Fatalf("expected admin role, got %q", role)
	}
}

func TestResolveOrderRoleClient(t *testing.T) {
	f := newIdentityFixture()
	role, err := f.identity.ResolveOrderRole(context.Background(), f.client.ID, f.order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != model.RoleClient {
		t.Fatalf("expected client role, got %q", role)
	}
}

func TestResolveOrderRoleProviderBySecondaryID(t *testing.T) {
	f := newIdentityFixture()
	role, err := f.identity.ResolveOrderRole(context.Background(), f.provider.ID, f.order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != model.RoleProvider {
		t.Fatalf("expected provider role, got %q", role)
	}
}

func TestResolveOrderRoleProviderProfileFallback(t *testing.T) {
	f := newIdentityFixture()
	// The direct lookup by profile misses, but the order-side provider record
	// still points back at the principal.
	delete(f.providers.ByProfile, f.provider.ID)

	role, err := f.identity.ResolveOrderRole(context.Background(), f.provider.ID, f.order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != model.RoleProvider {
		t.Fatalf("expected provider role via fallback, got %q", role)
	}
}

func TestResolveOrderRoleDeniesStranger(t *testing.T) {
	f := newIdentityFixture()
	stranger := f.profiles.Add(&model.Profile{Login: "stranger", Role: model.RoleClient})

	if _, err := f.identity.ResolveOrderRole(context.Background(), stranger.ID, f.order); err != domainErrors.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestResolveOrderRoleDeniesUnknownPrincipal(t *testing.T) {
	f := newIdentityFixture()
	if _, err := f.identity.ResolveOrderRole(context.Background(), uuid.New(), f.order); err != domainErrors.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied for unknown principal, got %v", err)
	}
}

func TestSubjectForProviderUsesRecordID(t *testing.T) {
	f := newIdentityFixture()
	subject, err := f.identity.SubjectFor(context.Background(), f.provider.ID, model.RoleProvider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject.Type != model.SubjectProvider || subject.ID != f.record.ID {
		t.Fatalf("expected provider record subject, got %+v", subject)
	}
}

func TestSubjectForClientUsesProfileID(t *testing.T) {
	f := newIdentityFixture()
	subject, err := f.identity.SubjectFor(context.Background(), f.client.ID, model.RoleClient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject.Type != model.SubjectClient || subject.ID != f.client.ID {
		t.Fatalf("expected client subject, got %+v", subject)
	}
}
