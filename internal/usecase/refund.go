package usecase

import (
	"context"

	"github.com/google/uuid"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
	"github.com/craftdeal/craftdeal/internal/domain/repository"
)

// EscrowUseCase exposes the escrow hold state and its idempotent release.
type EscrowUseCase struct {
	escrows repository.EscrowRepository
}

// NewEscrowUseCase constructs EscrowUseCase.
func NewEscrowUseCase(escrows repository.EscrowRepository) *EscrowUseCase {
	return &EscrowUseCase{escrows: escrows}
}

// Get returns the escrow record for an order.
func (u *EscrowUseCase) Get(ctx context.Context, orderID uuid.UUID) (*model.Escrow, error) {
	return u.escrows.Get(ctx, orderID)
}

// Release moves held funds to the order's provider. Releasing an already
// released escrow is a no-op, not an error.
func (u *EscrowUseCase) Release(ctx context.Context, orderID uuid.UUID) (bool, error) {
	return u.escrows.Release(ctx, orderID)
}

// RefundUseCase runs the two-step refund request/approval workflow.
type RefundUseCase struct {
	orders   repository.OrderRepository
	refunds  repository.RefundRepository
	profiles repository.ProfileRepository
	identity *IdentityUseCase
}

// NewRefundUseCase constructs RefundUseCase.
func NewRefundUseCase(orders repository.OrderRepository, refunds repository.RefundRepository, profiles repository.ProfileRepository, identity *IdentityUseCase) *RefundUseCase {
	return &RefundUseCase{orders: orders, refunds: refunds, profiles: profiles, identity: identity}
}

// Request opens a pending refund request. Only the order's client may request,
// the amount may be partial but never above the order total, and no balance
// changes until an admin approves.
func (u *RefundUseCase) Request(ctx context.Context, principalID, orderID uuid.UUID, amount int64, reason string) (*model.RefundRequest, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	role, err := u.identity.ResolveOrderRole(ctx, principalID, order)
	if err != nil {
		return nil, err
	}
	if role != model.RoleClient && role != model.RoleAdmin {
		return nil, domainErrors.ErrAccessDenied
	}

	if amount <= 0 || amount > order.TotalAmount {
		return nil, domainErrors.ErrInvalidAmount
	}

	return u.refunds.Create(ctx, &model.RefundRequest{
		OrderID:    order.ID,
		ClientID:   order.ClientID,
		ProviderID: order.ProviderID,
		Amount:     amount,
		Reason:     reason,
		Status:     model.RefundPending,
	})
}

// Resolve completes or rejects a pending request. Approval debits the provider
// and credits the client atomically; rejection changes no balances. Both
// outcomes are terminal.
func (u *RefundUseCase) Resolve(ctx context.Context, principalID, requestID uuid.UUID, approved bool, adminNotes string) (*model.RefundRequest, error) {
	profile, err := u.profiles.GetByID(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if profile.Role != model.RoleAdmin {
		return nil, domainErrors.ErrAccessDenied
	}

	return u.refunds.Resolve(ctx, requestID, approved, adminNotes)
}

// ListByOrder returns the refund requests on an order for a participant.
func (u *RefundUseCase) ListByOrder(ctx context.Context, principalID, orderID uuid.UUID) ([]model.RefundRequest, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := u.identity.ResolveOrderRole(ctx, principalID, order); err != nil {
		return nil, err
	}
	return u.refunds.ListByOrder(ctx, orderID)
}

// Get returns a refund request visible to the principal.
func (u *RefundUseCase) Get(ctx context.Context, principalID, requestID uuid.UUID) (*model.RefundRequest, error) {
	req, err := u.refunds.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	order, err := u.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if _, err := u.identity.ResolveOrderRole(ctx, principalID, order); err != nil {
		return nil, err
	}
	return req, nil
}
