package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/craftdeal/craftdeal/internal/domain/model"
	"github.com/craftdeal/craftdeal/internal/usecase"
)

// PaymentVerifier checks that an external charge is held for the given amount
// before an order is admitted as paid.
type PaymentVerifier interface {
	VerifyHold(ctx context.Context, chargeRef string, amount int64) error
}

// MarketplaceFacade is the single application surface consumed by the HTTP
// layer and the presence monitor.
type MarketplaceFacade struct {
	auth            *usecase.AuthUseCase
	identity        *usecase.IdentityUseCase
	orders          *usecase.OrderUseCase
	ledger          *usecase.LedgerUseCase
	escrows         *usecase.EscrowUseCase
	refunds         *usecase.RefundUseCase
	disputes        *usecase.DisputeUseCase
	payments        PaymentVerifier
	defaultCurrency string
}

// NewMarketplaceFacade constructs the facade from the individual usecases.
func NewMarketplaceFacade(
	auth *usecase.AuthUseCase,
	identity *usecase.IdentityUseCase,
	orders *usecase.OrderUseCase,
	ledger *usecase.LedgerUseCase,
	escrows *usecase.EscrowUseCase,
	refunds *usecase.RefundUseCase,
	disputes *usecase.DisputeUseCase,
	payments PaymentVerifier,
	defaultCurrency string,
) *MarketplaceFacade {
	return &MarketplaceFacade{
		auth:            auth,
		identity:        identity,
		orders:          orders,
		ledger:          ledger,
		escrows:         escrows,
		refunds:         refunds,
		disputes:        disputes,
		payments:        payments,
		defaultCurrency: defaultCurrency,
	}
}

func (f *MarketplaceFacade) Register(ctx context.Context, login, password string, role model.Role, displayName string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password, role, displayName)
	return token, err
}

func (f *MarketplaceFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *MarketplaceFacade) ParseToken(token string) (uuid.UUID, model.Role, error) {
	return f.auth.ParseToken(token)
}

// CreateOrder verifies the external charge hold, then records the order with
// its escrow in paid status.
func (f *MarketplaceFacade) CreateOrder(ctx context.Context, clientID, providerID uuid.UUID, title string, amount int64, currency, chargeRef string) (*model.Order, error) {
	if currency == "" {
		currency = f.defaultCurrency
	}
	if err := f.payments.VerifyHold(ctx, chargeRef, amount); err != nil {
		return nil, err
	}
	return f.orders.Create(ctx, clientID, providerID, title, amount, currency)
}

func (f *MarketplaceFacade) Order(ctx context.Context, principalID, orderID uuid.UUID) (*model.Order, error) {
	return f.orders.Get(ctx, principalID, orderID)
}

func (f *MarketplaceFacade) Orders(ctx context.Context, principalID uuid.UUID, role model.Role) ([]model.Order, error) {
	return f.orders.ListForPrincipal(ctx, principalID, role)
}

func (f *MarketplaceFacade) ApplyOrderAction(ctx context.Context, principalID, orderID uuid.UUID, action model.OrderAction, params usecase.ActionParams) (*model.Order, error) {
	return f.orders.Apply(ctx, principalID, orderID, action, params)
}

func (f *MarketplaceFacade) OrderDeliveries(ctx context.Context, principalID, orderID uuid.UUID) ([]model.OrderDelivery, error) {
	return f.orders.Deliveries(ctx, principalID, orderID)
}

func (f *MarketplaceFacade) Balance(ctx context.Context, principalID uuid.UUID, role model.Role) (*model.Balance, error) {
	subject, err := f.identity.SubjectFor(ctx, principalID, role)
	if err != nil {
		return nil, err
	}
	return f.ledger.Balance(ctx, subject)
}

// Transfer moves funds from the caller's own balance. User-initiated transfers
// are recorded as donations.
func (f *MarketplaceFacade) Transfer(ctx context.Context, principalID uuid.UUID, role model.Role, destination model.Subject, amount int64, note string) (*model.LedgerEntry, error) {
	source, err := f.identity.SubjectFor(ctx, principalID, role)
	if err != nil {
		return nil, err
	}
	return f.ledger.Transfer(ctx, model.TransferParams{
		Source:      source,
		Destination: destination,
		Amount:      amount,
		Reason:      model.ReasonDonation,
		Note:        note,
	})
}

func (f *MarketplaceFacade) LedgerHistory(ctx context.Context, principalID uuid.UUID, role model.Role) ([]model.LedgerEntry, error) {
	subject, err := f.identity.SubjectFor(ctx, principalID, role)
	if err != nil {
		return nil, err
	}
	return f.ledger.History(ctx, subject)
}

// OrderEscrow returns the escrow of an order visible to the principal.
func (f *MarketplaceFacade) OrderEscrow(ctx context.Context, principalID, orderID uuid.UUID) (*model.Escrow, error) {
	if _, err := f.orders.Get(ctx, principalID, orderID); err != nil {
		return nil, err
	}
	return f.escrows.Get(ctx, orderID)
}

func (f *MarketplaceFacade) RequestRefund(ctx context.Context, principalID, orderID uuid.UUID, amount int64, reason string) (*model.RefundRequest, error) {
	return f.refunds.Request(ctx, principalID, orderID, amount, reason)
}

func (f *MarketplaceFacade) ResolveRefund(ctx context.Context, principalID, requestID uuid.UUID, approved bool, adminNotes string) (*model.RefundRequest, error) {
	return f.refunds.Resolve(ctx, principalID, requestID, approved, adminNotes)
}

func (f *MarketplaceFacade) Refund(ctx context.Context, principalID, requestID uuid.UUID) (*model.RefundRequest, error) {
	return f.refunds.Get(ctx, principalID, requestID)
}

func (f *MarketplaceFacade) OrderRefunds(ctx context.Context, principalID, orderID uuid.UUID) ([]model.RefundRequest, error) {
	return f.refunds.ListByOrder(ctx, principalID, orderID)
}

func (f *MarketplaceFacade) FileDispute(ctx context.Context, principalID, orderID uuid.UUID, reason, details string) (*model.Dispute, error) {
	return f.disputes.File(ctx, principalID, orderID, reason, details)
}

func (f *MarketplaceFacade) Dispute(ctx context.Context, principalID, disputeID uuid.UUID) (*model.Dispute, error) {
	dispute, _, err := f.disputes.Get(ctx, principalID, disputeID)
	return dispute, err
}

func (f *MarketplaceFacade) AcceptDisputeRules(ctx context.Context, principalID, disputeID uuid.UUID) (*model.Dispute, error) {
	return f.disputes.AcceptRules(ctx, principalID, disputeID)
}

func (f *MarketplaceFacade) JoinDispute(ctx context.Context, principalID, disputeID uuid.UUID) error {
	return f.disputes.Join(ctx, principalID, disputeID)
}

func (f *MarketplaceFacade) DisputeHeartbeat(ctx context.Context, principalID, disputeID uuid.UUID) error {
	return f.disputes.Heartbeat(ctx, principalID, disputeID)
}

func (f *MarketplaceFacade) DisputePresence(ctx context.Context, principalID, disputeID uuid.UUID) (*usecase.PresenceView, error) {
	return f.disputes.Presence(ctx, principalID, disputeID)
}

func (f *MarketplaceFacade) PostDisputeMessage(ctx context.Context, principalID, disputeID uuid.UUID, content string, mediaRef *string, replyTo *uuid.UUID) (*model.MediationMessage, error) {
	return f.disputes.PostMessage(ctx, principalID, disputeID, content, mediaRef, replyTo)
}

func (f *MarketplaceFacade) DisputeMessages(ctx context.Context, principalID, disputeID uuid.UUID) ([]model.MediationMessage, error) {
	return f.disputes.Messages(ctx, principalID, disputeID)
}

func (f *MarketplaceFacade) CloseDispute(ctx context.Context, principalID, disputeID uuid.UUID) error {
	return f.disputes.Close(ctx, principalID, disputeID)
}

// PendingDisputeSessions lists disputes awaiting activation, oldest first.
func (f *MarketplaceFacade) PendingDisputeSessions(ctx context.Context, limit int) ([]model.Dispute, error) {
	return f.disputes.PendingSessions(ctx, limit)
}

// TryActivateDisputeSession runs the idempotent server-side activation check.
func (f *MarketplaceFacade) TryActivateDisputeSession(ctx context.Context, disputeID uuid.UUID) (bool, error) {
	return f.disputes.TryActivate(ctx, disputeID)
}
