package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
	testhelpers "github.com/craftdeal/craftdeal/internal/test"
	"github.com/craftdeal/craftdeal/internal/usecase"
)

type orderFixture struct {
	*identityFixture
	orders   *testhelpers.OrderRepositoryStub
	escrows  *testhelpers.EscrowRepositoryStub
	refunds  *testhelpers.RefundRepositoryStub
	balances *testhelpers.BalanceRepositoryStub
	uc       *usecase.OrderUseCase
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		identityFixture: newIdentityFixture(),
		orders:          testhelpers.NewOrderRepositoryStub(),
		escrows:         testhelpers.NewEscrowRepositoryStub(),
		refunds:         testhelpers.NewRefundRepositoryStub(),
		balances:        testhelpers.NewBalanceRepositoryStub(),
	}
	f.uc = usecase.NewOrderUseCase(f.orders, f.escrows, f.refunds, f.balances, f.providers, f.identity, discardLogger())

	f.orders.Add(f.order)
	f.escrows.Escrows[f.order.ID] = &model.Escrow{OrderID: f.order.ID, Amount: 5000, Status: model.EscrowHeld}
	f.order.TotalAmount = 5000
	f.order.Currency = "USD"
	return f
}

func TestOrderCreateValidation(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	if _, err := f.uc.Create(ctx, f.client.ID, f.record.ID, "mug", 0, "USD"); err != domainErrors.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for zero amount, got %v", err)
	}
	if _, err := f.uc.Create(ctx, f.client.ID, f.record.ID, "mug", 100, "dollars"); err != domainErrors.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for bad currency, got %v", err)
	}

	order, err := f.uc.Create(ctx, f.client.ID, f.record.ID, "mug", 100, "USD")
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if order.Status != model.OrderStatusPaid {
		t.Fatalf("new order must start paid, got %q", order.Status)
	}
}

func TestOrderStartByProvider(t *testing.T) {
	f := newOrderFixture()
	order, err := f.uc.Apply(context.Background(), f.provider.ID, f.order.ID, model.ActionStart, usecase.ActionParams{})
	if err != nil {
		t.Fatalf("start returned error: %v", err)
	}
	if order.Status != model.OrderStatusInProgress {
		t.Fatalf("expected in_progress, got %q", order.Status)
	}
}

func TestOrderStartDeniedForClient(t *testing.T) {
	f := newOrderFixture()
	if _, err := f.uc.Apply(context.Background(), f.client.ID, f.order.ID, model.ActionStart, usecase.ActionParams{}); err != domainErrors.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestOrderStartGuardRejectsWrongStatus(t *testing.T) {
	f := newOrderFixture()
	f.order.Status = model.OrderStatusDelivered
	if _, err := f.uc.Apply(context.Background(), f.provider.ID, f.order.ID, model.ActionStart, usecase.ActionParams{}); err != domainErrors.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestOrderUnknownAction(t *testing.T) {
	f := newOrderFixture()
	if _, err := f.uc.Apply(context.Background(), f.provider.ID, f.order.ID, model.OrderAction("explode"), usecase.ActionParams{}); err != domainErrors.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestOrderDeliveryNumbersIncrease(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	f.order.Status = model.OrderStatusInProgress

	if _, err := f.uc.Apply(ctx, f.provider.ID, f.order.ID, model.ActionDeliver, usecase.ActionParams{Message: "first cut"}); err != nil {
		t.Fatalf("first deliver failed: %v", err)
	}
	if _, err := f.uc.Apply(ctx, f.client.ID, f.order.ID, model.ActionRevision, usecase.ActionParams{Reason: "handle is crooked"}); err != nil {
		t.Fatalf("revision failed: %v", err)
	}
	if _, err := f.uc.Apply(ctx, f.provider.ID, f.order.ID, model.ActionDeliver, usecase.ActionParams{Message: "fixed"}); err != nil {
		t.Fatalf("second deliver failed: %v", err)
	}

	deliveries, err := f.uc.Deliveries(ctx, f.client.ID, f.order.ID)
	if err != nil {
		t.Fatalf("deliveries failed: %v", err)
	}
	if len(deliveries) != 2 || deliveries[0].Number != 1 || deliveries[1].Number != 2 {
		t.Fatalf("expected deliveries numbered 1,2, got %+v", deliveries)
	}

	order, _ := f.orders.GetByID(ctx, f.order.ID)
	if order.RevisionCount != 1 {
		t.Fatalf("expected one revision recorded, got %d", order.RevisionCount)
	}
}

func TestOrderAcceptSettles(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	f.order.Status = model.OrderStatusDelivered

	order, err := f.uc.Apply(ctx, f.client.ID, f.order.ID, model.ActionAccept, usecase.ActionParams{})
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if order.Status != model.OrderStatusCompleted || order.CompletionReason != model.CompletionAccepted {
		t.Fatalf("unexpected completion state: %+v", order)
	}

	escrow, _ := f.escrows.Get(ctx, f.order.ID)
	if escrow.Status != model.EscrowReleased {
		t.Fatalf("expected escrow released, got %q", escrow.Status)
	}
	providerBalance, _ := f.balances.Get(ctx, model.Subject{Type: model.SubjectProvider, ID: f.record.ID})
	if providerBalance.Earned != 5000 {
		t.Fatalf("expected earning recognized once, got %d", providerBalance.Earned)
	}
}

func TestOrderAcceptTwiceIsRejectedAndCreditsOnce(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	f.order.Status = model.OrderStatusDelivered

	if _, err := f.uc.Apply(ctx, f.client.ID, f.order.ID, model.ActionAccept, usecase.ActionParams{}); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := f.uc.Apply(ctx, f.client.ID, f.order.ID, model.ActionAccept, usecase.ActionParams{}); err != domainErrors.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition on second accept, got %v", err)
	}

	providerBalance, _ := f.balances.Get(ctx, model.Subject{Type: model.SubjectProvider, ID: f.record.ID})
	if providerBalance.Earned != 5000 {
		t.Fatalf("earning must be recognized exactly once, got %d", providerBalance.Earned)
	}
	if len(f.escrows.ReleaseCalls) != 1 {
		t.Fatalf("expected exactly one release attempt, got %d", len(f.escrows.ReleaseCalls))
	}
}

func TestOrderForceCompleteAdminOnly(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	f.order.Status = model.OrderStatusInProgress

	if _, err := f.uc.Apply(ctx, f.client.ID, f.order.ID, model.ActionForceComplete, usecase.ActionParams{}); err != domainErrors.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied for client, got %v", err)
	}
	if _, err := f.uc.Apply(ctx, f.provider.ID, f.order.ID, model.ActionForceComplete, usecase.ActionParams{}); err != domainErrors.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied for provider, got %v", err)
	}

	order, err := f.uc.Apply(ctx, f.admin.ID, f.order.ID, model.ActionForceComplete, usecase.ActionParams{})
	if err != nil {
		t.Fatalf("admin force complete failed: %v", err)
	}
	if order.CompletionReason != model.CompletionForced {
		t.Fatalf("expected forced completion reason, got %q", order.CompletionReason)
	}
}

func TestOrderForceCompleteBlockedAfterCompletedRefund(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	f.order.Status = model.OrderStatusInProgress

	refund, err := f.refunds.Create(ctx, &model.RefundRequest{OrderID: f.order.ID, ClientID: f.client.ID, ProviderID: f.record.ID, Amount: 5000})
	if err != nil {
		t.Fatalf("seed refund failed: %v", err)
	}
	if _, err := f.refunds.Resolve(ctx, refund.ID, true, "granted"); err != nil {
		t.Fatalf("resolve refund failed: %v", err)
	}

	if _, err := f.uc.Apply(ctx, f.admin.ID, f.order.ID, model.ActionForceComplete, usecase.ActionParams{}); err != domainErrors.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition after completed refund, got %v", err)
	}
}

func TestOrderCancelAndReactivate(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	order, err := f.uc.Apply(ctx, f.client.ID, f.order.ID, model.ActionCancel, usecase.ActionParams{})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if order.Status != model.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %q", order.Status)
	}

	order, err = f.uc.Apply(ctx, f.provider.ID, f.order.ID, model.ActionReactivate, usecase.ActionParams{})
	if err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	if order.Status != model.OrderStatusPaid {
		t.Fatalf("expected paid after reactivate, got %q", order.Status)
	}
}

func TestOrderCancelCompletedRejected(t *testing.T) {
	f := newOrderFixture()
	f.order.Status = model.OrderStatusCompleted
	if _, err := f.uc.Apply(context.Background(), f.client.ID, f.order.ID, model.ActionCancel, usecase.ActionParams{}); err != domainErrors.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestOrderMarkDelayedThenDeliver(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	f.order.Status = model.OrderStatusInProgress

	order, err := f.uc.Apply(ctx, f.provider.ID, f.order.ID, model.ActionMarkDelayed, usecase.ActionParams{})
	if err != nil {
		t.Fatalf("mark delayed failed: %v", err)
	}
	if order.Status != model.OrderStatusDeliveryDelayed {
		t.Fatalf("expected delivery_delayed, got %q", order.Status)
	}

	order, err = f.uc.Apply(ctx, f.provider.ID, f.order.ID, model.ActionDeliver, usecase.ActionParams{Message: "late but done"})
	if err != nil {
		t.Fatalf("deliver from delayed failed: %v", err)
	}
	if order.Status != model.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %q", order.Status)
	}
}

func TestOrderGetDeniedForStranger(t *testing.T) {
	f := newOrderFixture()
	stranger := f.profiles.Add(&model.Profile{Login: "stranger", Role: model.RoleClient})
	if _, err := f.uc.Get(context.Background(), stranger.ID, f.order.ID); err != domainErrors.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestOrderListForPrincipal(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	other := f.orders.Add(&model.Order{ClientID: uuid.New(), ProviderID: f.record.ID, Status: model.OrderStatusPaid})

	clientOrders, err := f.uc.ListForPrincipal(ctx, f.client.ID, model.RoleClient)
	if err != nil || len(clientOrders) != 1 {
		t.Fatalf("expected one client order, got %v err=%v", clientOrders, err)
	}

	providerOrders, err := f.uc.ListForPrincipal(ctx, f.provider.ID, model.RoleProvider)
	if err != nil || len(providerOrders) != 2 {
		t.Fatalf("expected two provider orders, got %v err=%v", providerOrders, err)
	}
	_ = other
}
