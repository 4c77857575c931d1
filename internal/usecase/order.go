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

// ActionParams carries the optional inputs of a lifecycle action.
type ActionParams struct {
	Message string
	FileRef *string
	Reason  string
}

// validFrom is the status guard of each action. An action whose guard excludes
// the order's current status is a rejected precondition, never applied.
var validFrom = map[model.OrderAction][]model.OrderStatus{
	model.ActionStart:       {model.OrderStatusPaid},
	model.ActionDeliver:     {model.OrderStatusInProgress, model.OrderStatusDeliveryDelayed, model.OrderStatusRevisionRequested},
	model.ActionAccept:      {model.OrderStatusDelivered},
	model.ActionRevision:    {model.OrderStatusDelivered},
	model.ActionMarkDelayed: {model.OrderStatusInProgress},
	model.ActionCancel: {
		model.OrderStatusPaid, model.OrderStatusInProgress, model.OrderStatusDelivered,
		model.OrderStatusRevisionRequested, model.OrderStatusDeliveryDelayed,
	},
	model.ActionReactivate: {model.OrderStatusCancelled},
	model.ActionForceComplete: {
		model.OrderStatusPaid, model.OrderStatusInProgress, model.OrderStatusDelivered,
		model.OrderStatusRevisionRequested, model.OrderStatusDeliveryDelayed,
	},
}

// actionRoles lists the non-admin roles permitted to run each action. Admin is
// always permitted; force_complete is admin only.
var actionRoles = map[model.OrderAction][]model.Role{
	model.ActionStart:         {model.RoleProvider},
	model.ActionDeliver:       {model.RoleProvider},
	model.ActionMarkDelayed:   {model.RoleProvider},
	model.ActionAccept:        {model.RoleClient},
	model.ActionRevision:      {model.RoleClient},
	model.ActionCancel:        {model.RoleClient, model.RoleProvider},
	model.ActionReactivate:    {model.RoleClient, model.RoleProvider},
	model.ActionForceComplete: {},
}

// OrderUseCase enforces the order status state machine and runs the settlement
// side effects on completion.
type OrderUseCase struct {
	orders    repository.OrderRepository
	escrows   repository.EscrowRepository
	refunds   repository.RefundRepository
	balances  repository.BalanceRepository
	providers repository.ProviderRepository
	identity  *IdentityUseCase
	logger    *slog.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, escrows repository.EscrowRepository, refunds repository.RefundRepository, balances repository.BalanceRepository, providers repository.ProviderRepository, identity *IdentityUseCase, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{orders: orders, escrows: escrows, refunds: refunds, balances: balances, providers: providers, identity: identity, logger: logger}
}

// Create places a new commissioned order with its payment already held in
// escrow. Settlement with the payment processor happens upstream.
func (u *OrderUseCase) Create(ctx context.Context, clientID, providerID uuid.UUID, title string, amount int64, currency string) (*model.Order, error) {
	if amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	if !ValidateCurrency(currency) {
		return nil, domainErrors.ErrInvalidAmount
	}
	order := &model.Order{
		ClientID:    clientID,
		ProviderID:  providerID,
		Status:      model.OrderStatusPaid,
		Title:       title,
		TotalAmount: amount,
		Currency:    currency,
	}
	return u.orders.Create(ctx, order)
}

// Get returns the order if the principal holds a role on it.
func (u *OrderUseCase) Get(ctx context.Context, principalID, orderID uuid.UUID) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := u.identity.ResolveOrderRole(ctx, principalID, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListForPrincipal returns the orders visible to the principal: orders it
// placed as a client plus, for providers, orders assigned to its provider
// record.
func (u *OrderUseCase) ListForPrincipal(ctx context.Context, principalID uuid.UUID, role model.Role) ([]model.Order, error) {
	if role == model.RoleProvider {
		provider, err := u.providers.GetByProfile(ctx, principalID)
		if err != nil {
			return nil, err
		}
		return u.orders.ListByProvider(ctx, provider.ID)
	}
	return u.orders.ListByClient(ctx, principalID)
}

// Deliveries lists the order's delivery history for a participant.
func (u *OrderUseCase) Deliveries(ctx context.Context, principalID, orderID uuid.UUID) ([]model.OrderDelivery, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := u.identity.ResolveOrderRole(ctx, principalID, order); err != nil {
		return nil, err
	}
	return u.orders.ListDeliveries(ctx, orderID)
}

// Apply runs one lifecycle action on behalf of the principal. The status guard
// is re-evaluated inside the repository as a single guarded update, so two
// concurrent requests can never both pass it.
func (u *OrderUseCase) Apply(ctx context.Context, principalID, orderID uuid.UUID, action model.OrderAction, params ActionParams) (*model.Order, error) {
	from, ok := validFrom[action]
	if !ok {
		return nil, domainErrors.ErrInvalidTransition
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	role, err := u.identity.ResolveOrderRole(ctx, principalID, order)
	if err != nil {
		return nil, err
	}
	if !actionPermitted(action, role) {
		return nil, domainErrors.ErrAccessDenied
	}

	switch action {
	case model.ActionStart:
		return u.orders.Transition(ctx, orderID, from, model.OrderStatusInProgress, model.CompletionNone)

	case model.ActionDeliver:
		updated, _, err := u.orders.Deliver(ctx, orderID, from, params.Message, params.FileRef)
		return updated, err

	case model.ActionRevision:
		updated, _, err := u.orders.RequestRevision(ctx, orderID, principalID, params.Reason)
		return updated, err

	case model.ActionMarkDelayed:
		return u.orders.Transition(ctx, orderID, from, model.OrderStatusDeliveryDelayed, model.CompletionNone)

	case model.ActionCancel:
		return u.orders.Transition(ctx, orderID, from, model.OrderStatusCancelled, model.CompletionNone)

	case model.ActionReactivate:
		return u.orders.Transition(ctx, orderID, from, model.OrderStatusPaid, model.CompletionNone)

	case model.ActionAccept:
		updated, err := u.orders.Transition(ctx, orderID, from, model.OrderStatusCompleted, model.CompletionAccepted)
		if err != nil {
			return nil, err
		}
		u.settle(ctx, updated)
		return updated, nil

	case model.ActionForceComplete:
		if err := u.rejectIfRefunded(ctx, orderID); err != nil {
			return nil, err
		}
		updated, err := u.orders.Transition(ctx, orderID, from, model.OrderStatusCompleted, model.CompletionForced)
		if err != nil {
			return nil, err
		}
		u.settle(ctx, updated)
		return updated, nil
	}

	return nil, domainErrors.ErrInvalidTransition
}

// settle runs earning recognition and escrow release after the status flip has
// committed. Both are best-effort: a failure leaves the order completed and is
// surfaced as an operational alert for out-of-band reconciliation, never rolled
// back.
func (u *OrderUseCase) settle(ctx context.Context, order *model.Order) {
	if _, err := u.balances.RecognizeEarning(ctx, order.ID, order.ProviderID, order.TotalAmount); err != nil {
		u.logger.Error("earning recognition failed, reconciliation required",
			slog.String("order_id", order.ID.String()),
			slog.String("provider_id", order.ProviderID.String()),
			slog.String("error", err.Error()),
		)
	}
	if _, err := u.escrows.Release(ctx, order.ID); err != nil {
		u.logger.Error("escrow release failed, reconciliation required",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (u *OrderUseCase) rejectIfRefunded(ctx context.Context, orderID uuid.UUID) error {
	requests, err := u.refunds.ListByOrder(ctx, orderID)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return err
	}
	for _, r := range requests {
		if r.Status == model.RefundCompleted {
			return domainErrors.ErrInvalidTransition
		}
	}
	return nil
}

func actionPermitted(action model.OrderAction, role model.Role) bool {
	if role == model.RoleAdmin {
		return true
	}
	for _, allowed := range actionRoles[action] {
		if role == allowed {
			return true
		}
	}
	return false
}
