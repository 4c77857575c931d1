package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/craftdeal/craftdeal/internal/domain/model"
)

// OrderRepository describes persistence operations with orders. Every mutation
// that depends on the current status takes the set of statuses it is valid from
// and performs the update as a single guarded statement, so two concurrent
// requests can never both pass the same guard.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Order, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]model.Order, error)

	// Transition flips status iff the current status is in from. Returns
	// ErrInvalidTransition when the order exists but the guard fails.
	Transition(ctx context.Context, orderID uuid.UUID, from []model.OrderStatus, to model.OrderStatus, reason model.CompletionReason) (*model.Order, error)

	// Deliver creates the next-numbered delivery and moves the order to
	// delivered in one transaction, guarded by from.
	Deliver(ctx context.Context, orderID uuid.UUID, from []model.OrderStatus, message string, fileRef *string) (*model.Order, *model.OrderDelivery, error)

	// RequestRevision records a revision request, bumps the revision counter
	// and moves the order back to in_progress, guarded on delivered.
	RequestRevision(ctx context.Context, orderID, requesterID uuid.UUID, reason string) (*model.Order, *model.OrderRevision, error)

	ListDeliveries(ctx context.Context, orderID uuid.UUID) ([]model.OrderDelivery, error)
}

// EscrowRepository manages the one-to-one payment hold per order.
type EscrowRepository interface {
	Get(ctx context.Context, orderID uuid.UUID) (*model.Escrow, error)
	// Release flips held to released and credits the order's provider in one
	// transaction. Returns false with nil error when already released.
	Release(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// RefundRepository runs the two-step refund workflow.
type RefundRepository interface {
	Create(ctx context.Context, req *model.RefundRequest) (*model.RefundRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.RefundRequest, error)
	// Resolve transitions a pending request to completed or rejected. Approval
	// moves the amount from the provider's balance to the client's inside the
	// same transaction. Resolving a non-pending request returns ErrAlreadyResolved.
	Resolve(ctx context.Context, id uuid.UUID, approved bool, adminNotes string) (*model.RefundRequest, error)
}
