package usecase_test

import (
	"context"
	"testing"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
	testhelpers "github.com/craftdeal/craftdeal/internal/test"
	"github.com/craftdeal/craftdeal/internal/usecase"
)

type refundFixture struct {
	*identityFixture
	orders  *testhelpers.OrderRepositoryStub
	refunds *testhelpers.RefundRepositoryStub
	uc      *usecase.RefundUseCase
}

func newRefundFixture() *refundFixture {
	f := &refundFixture{
		identityFixture: newIdentityFixture(),
		orders:          testhelpers.NewOrderRepositoryStub(),
		refunds:         testhelpers.NewRefundRepositoryStub(),
	}
	f.uc = usecase.NewRefundUseCase(f.orders, f.refunds, f.profiles, f.identity)
	f.order.TotalAmount = 5000
	f.orders.Add(f.order)
	return f
}

func TestRefundRequestByClient(t *testing.T) {
	f := newRefundFixture()
	refund, err := f.uc.Request(context.Background(), f.client.ID, f.order.ID, 2000, "half the glaze is missing")
	if err != nil {
		t.Fatalf("request returned error: %v", err)
	}
	if refund.Status != model.RefundPending {
		t.Fatalf("new refund must be pending, got %q", refund.Status)
	}
	if refund.Amount != 2000 || refund.ProviderID != f.record.ID {
		t.Fatalf("unexpected refund: %+v", refund)
	}
}

func TestRefundRequestDeniedForProvider(t *testing.T) {
	f := newRefundFixture()
	if _, err := f.uc.Request(context.Background(), f.provider.ID, f.order.ID, 2000, "x"); err != domainErrors.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestRefundRequestAmountBounds(t *testing.T) {
	f := newRefundFixture()
	ctx := context.Background()

	if _, err := f.uc.Request(ctx, f.client.ID, f.order.ID, 0, "x"); err != domainErrors.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}
	if _, err := f.uc.Request(ctx, f.client.ID, f.order.ID, 5001, "x"); err != domainErrors.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount above total, got %v", err)
	}
	if _, err := f.uc.Request(ctx, f.client.ID, f.order.ID, 5000, "full refund"); err != nil {
		t.Fatalf("full amount must be allowed: %v", err)
	}
}

func TestRefundResolveAdminOnly(t *testing.T) {
	f := newRefundFixture()
	ctx := context.Background()
	refund, err := f.uc.Request(ctx, f.client.ID, f.order.ID, 1000, "late")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if _, err := f.uc.Resolve(ctx, f.client.ID, refund.ID, true, ""); err != domainErrors.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied for client, got %v", err)
	}

	resolved, err := f.uc.Resolve(ctx, f.admin.ID, refund.ID, true, "verified")
	if err != nil {
		t.Fatalf("admin resolve failed: %v", err)
	}
	if resolved.Status != model.RefundCompleted || resolved.AdminNotes != "verified" {
		t.Fatalf("unexpected resolution: %+v", resolved)
	}
}

func TestRefundResolveTwiceFails(t *testing.T) {
	f := newRefundFixture()
	ctx := context.Background()
	refund, _ := f.uc.Request(ctx, f.client.ID, f.order.ID, 1000, "late")

	if _, err := f.uc.Resolve(ctx, f.admin.ID, refund.ID, false, "no grounds"); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	if _, err := f.uc.Resolve(ctx, f.admin.ID, refund.ID, true, ""); err != domainErrors.ErrAlreadyResolved {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
}

func TestRefundVisibility(t *testing.T) {
	f := newRefundFixture()
	ctx := context.Background()
	refund, _ := f.uc.Request(ctx, f.client.ID, f.order.ID, 1000, "late")

	if _, err := f.uc.Get(ctx, f.provider.ID, refund.ID); err != nil {
		t.Fatalf("provider must see refunds on its order: %v", err)
	}

	stranger := f.profiles.Add(&model.Profile{Login: "stranger", Role: model.RoleClient})
	if _, err := f.uc.Get(ctx, stranger.ID, refund.ID); err != domainErrors.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	listed, err := f.uc.ListByOrder(ctx, f.client.ID, f.order.ID)
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected one listed refund, got %v err=%v", listed, err)
	}
}

func TestEscrowReleaseIdempotent(t *testing.T) {
	escrows := testhelpers.NewEscrowRepositoryStub()
	orderID := testhelpers.NewOrderRepositoryStub().Add(&model.Order{}).ID
	escrows.Escrows[orderID] = &model.Escrow{OrderID: orderID, Amount: 100, Status: model.EscrowHeld}
	uc := usecase.NewEscrowUseCase(escrows)
	ctx := context.Background()

	released, err := uc.Release(ctx, orderID)
	if err != nil || !released {
		t.Fatalf("first release: released=%v err=%v", released, err)
	}
	released, err = uc.Release(ctx, orderID)
	if err != nil || released {
		t.Fatalf("second release must be a no-op: released=%v err=%v", released, err)
	}
}
