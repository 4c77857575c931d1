package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/craftdeal/craftdeal/internal/domain/model"
	"github.com/craftdeal/craftdeal/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string, role model.Role, displayName string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (uuid.UUID, model.Role, error)
}

// OrderFacade encapsulates order lifecycle operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, clientID uuid.UUID, providerID uuid.UUID, title string, amount int64, currency, chargeRef string) (*model.Order, error)
	Order(ctx context.Context, principalID, orderID uuid.UUID) (*model.Order, error)
	Orders(ctx context.Context, principalID uuid.UUID, role model.Role) ([]model.Order, error)
	ApplyOrderAction(ctx context.Context, principalID, orderID uuid.UUID, action model.OrderAction, params usecase.ActionParams) (*model.Order, error)
	OrderDeliveries(ctx context.Context, principalID, orderID uuid.UUID) ([]model.OrderDelivery, error)
}

// LedgerFacade provides balance and transfer operations.
type LedgerFacade interface {
	Balance(ctx context.Context, principalID uuid.UUID, role model.Role) (*model.Balance, error)
	Transfer(ctx context.Context, principalID uuid.UUID, role model.Role, destination model.Subject, amount int64, note string) (*model.LedgerEntry, error)
	LedgerHistory(ctx context.Context, principalID uuid.UUID, role model.Role) ([]model.LedgerEntry, error)
}

// RefundFacade covers escrow inspection and the refund claim workflow.
type RefundFacade interface {
	OrderEscrow(ctx context.Context, principalID, orderID uuid.UUID) (*model.Escrow, error)
	RequestRefund(ctx context.Context, principalID, orderID uuid.UUID, amount int64, reason string) (*model.RefundRequest, error)
	ResolveRefund(ctx context.Context, principalID, requestID uuid.UUID, approved bool, adminNotes string) (*model.RefundRequest, error)
	Refund(ctx context.Context, principalID, requestID uuid.UUID) (*model.RefundRequest, error)
	OrderRefunds(ctx context.Context, principalID, orderID uuid.UUID) ([]model.RefundRequest, error)
}

// DisputeFacade covers dispute filing, the presence protocol and mediation.
type DisputeFacade interface {
	FileDispute(ctx context.Context, principalID, orderID uuid.UUID, reason, details string) (*model.Dispute, error)
	Dispute(ctx context.Context, principalID, disputeID uuid.UUID) (*model.Dispute, error)
	AcceptDisputeRules(ctx context.Context, principalID, disputeID uuid.UUID) (*model.Dispute, error)
	JoinDispute(ctx context.Context, principalID, disputeID uuid.UUID) error
	DisputeHeartbeat(ctx context.Context, principalID, disputeID uuid.UUID) error
	DisputePresence(ctx context.Context, principalID, disputeID uuid.UUID) (*usecase.PresenceView, error)
	PostDisputeMessage(ctx context.Context, principalID, disputeID uuid.UUID, content string, mediaRef *string, replyTo *uuid.UUID) (*model.MediationMessage, error)
	DisputeMessages(ctx context.Context, principalID, disputeID uuid.UUID) ([]model.MediationMessage, error)
	CloseDispute(ctx context.Context, principalID, disputeID uuid.UUID) error
}

// MarketplaceFacade aggregates the full set of operations used across handlers.
type MarketplaceFacade interface {
	AuthFacade
	OrderFacade
	LedgerFacade
	RefundFacade
	DisputeFacade
}
