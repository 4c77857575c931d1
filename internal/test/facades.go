package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/craftdeal/craftdeal/internal/domain/model"
	"github.com/craftdeal/craftdeal/internal/usecase"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn     func(context.Context, uuid.UUID, uuid.UUID, string, int64, string, string) (*model.Order, error)
	GetFn        func(context.Context, uuid.UUID, uuid.UUID) (*model.Order, error)
	ListFn       func(context.Context, uuid.UUID, model.Role) ([]model.Order, error)
	ApplyFn      func(context.Context, uuid.UUID, uuid.UUID, model.OrderAction, usecase.ActionParams) (*model.Order, error)
	DeliveriesFn func(context.Context, uuid.UUID, uuid.UUID) ([]model.OrderDelivery, error)
}

// CreateOrder delegates to provided function or returns a default order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, clientID, providerID uuid.UUID, title string, amount int64, currency, chargeRef string) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, clientID, providerID, title, amount, currency, chargeRef)
	}
	return &model.Order{ID: uuid.New(), ClientID: clientID, ProviderID: providerID, Status: model.OrderStatusPaid, Title: title, TotalAmount: amount, Currency: currency}, nil
}

// Order returns the configured order.
func (s OrderFacadeStub) Order(ctx context.Context, principalID, orderID uuid.UUID) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, principalID, orderID)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusPaid}, nil
}

// Orders returns predefined orders for the principal.
func (s OrderFacadeStub) Orders(ctx context.Context, principalID uuid.UUID, role model.Role) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, principalID, role)
	}
	return []model.Order{{ID: uuid.New(), ClientID: principalID}}, nil
}

// ApplyOrderAction delegates to the override or echoes the order.
func (s OrderFacadeStub) ApplyOrderAction(ctx context.Context, principalID, orderID uuid.UUID, action model.OrderAction, params usecase.ActionParams) (*model.Order, error) {
	if s.ApplyFn != nil {
		return s.ApplyFn(ctx, principalID, orderID, action, params)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusInProgress}, nil
}

// OrderDeliveries returns configured delivery history.
func (s OrderFacadeStub) OrderDeliveries(ctx context.Context, principalID, orderID uuid.UUID) ([]model.OrderDelivery, error) {
	if s.DeliveriesFn != nil {
		return s.DeliveriesFn(ctx, principalID, orderID)
	}
	return []model.OrderDelivery{{OrderID: orderID, Number: 1, Message: "done"}}, nil
}

// LedgerFacadeStub simulates balance operations.
type LedgerFacadeStub struct {
	BalanceFn  func(context.Context, uuid.UUID, model.Role) (*model.Balance, error)
	TransferFn func(context.Context, uuid.UUID, model.Role, model.Subject, int64, string) (*model.LedgerEntry, error)
	HistoryFn  func(context.Context, uuid.UUID, model.Role) ([]model.LedgerEntry, error)
}

// Balance returns stored summary or default data.
func (s LedgerFacadeStub) Balance(ctx context.Context, principalID uuid.UUID, role model.Role) (*model.Balance, error) {
	if s.BalanceFn != nil {
		return s.BalanceFn(ctx, principalID, role)
	}
	return &model.Balance{Available: 100, Withdrawn: 5}, nil
}

// Transfer executes the configured transfer handler.
func (s LedgerFacadeStub) Transfer(ctx context.Context, principalID uuid.UUID, role model.Role, destination model.Subject, amount int64, note string) (*model.LedgerEntry, error) {
	if s.TransferFn != nil {
		return s.TransferFn(ctx, principalID, role, destination, amount, note)
	}
	return &model.LedgerEntry{ID: uuid.New(), Destination: destination, Amount: amount, Reason: model.ReasonDonation}, nil
}

// LedgerHistory returns preconfigured history.
func (s LedgerFacadeStub) LedgerHistory(ctx context.Context, principalID uuid.UUID, role model.Role) ([]model.LedgerEntry, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, principalID, role)
	}
	return []model.LedgerEntry{{ID: uuid.New(), Amount: 1, Reason: model.ReasonDonation, CreatedAt: time.Unix(0, 0)}}, nil
}

// RefundFacadeStub simulates escrow and refund operations.
type RefundFacadeStub struct {
	EscrowFn      func(context.Context, uuid.UUID, uuid.UUID) (*model.Escrow, error)
	RequestFn     func(context.Context, uuid.UUID, uuid.UUID, int64, string) (*model.RefundRequest, error)
	ResolveFn     func(context.Context, uuid.UUID, uuid.UUID, bool, string) (*model.RefundRequest, error)
	GetFn         func(context.Context, uuid.UUID, uuid.UUID) (*model.RefundRequest, error)
	ListByOrderFn func(context.Context, uuid.UUID, uuid.UUID) ([]model.RefundRequest, error)
}

// OrderEscrow returns configured escrow state.
func (s RefundFacadeStub) OrderEscrow(ctx context.Context, principalID, orderID uuid.UUID) (*model.Escrow, error) {
	if s.EscrowFn != nil {
		return s.EscrowFn(ctx, principalID, orderID)
	}
	return &model.Escrow{OrderID: orderID, Amount: 100, Status: model.EscrowHeld}, nil
}

// RequestRefund delegates to the override or returns a new pending request.
func (s RefundFacadeStub) RequestRefund(ctx context.Context, principalID, orderID uuid.UUID, amount int64, reason string) (*model.RefundRequest, error) {
	if s.RequestFn != nil {
		return s.RequestFn(ctx, principalID, orderID, amount, reason)
	}
	return &model.RefundRequest{ID: uuid.New(), OrderID: orderID, Amount: amount, Reason: reason, Status: model.RefundPending}, nil
}

// ResolveRefund executes the configured resolution handler.
func (s RefundFacadeStub) ResolveRefund(ctx context.Context, principalID, requestID uuid.UUID, approved bool, adminNotes string) (*model.RefundRequest, error) {
	if s.ResolveFn != nil {
		return s.ResolveFn(ctx, principalID, requestID, approved, adminNotes)
	}
	status := model.RefundRejected
	if approved {
		status = model.RefundCompleted
	}
	return &model.RefundRequest{ID: requestID, Status: status, AdminNotes: adminNotes}, nil
}

// Refund returns configured refund request.
func (s RefundFacadeStub) Refund(ctx context.Context, principalID, requestID uuid.UUID) (*model.RefundRequest, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, principalID, requestID)
	}
	return &model.RefundRequest{ID: requestID, Status: model.RefundPending}, nil
}

// OrderRefunds returns configured refund list.
func (s RefundFacadeStub) OrderRefunds(ctx context.Context, principalID, orderID uuid.UUID) ([]model.RefundRequest, error) {
	if s.ListByOrderFn != nil {
		return s.ListByOrderFn(ctx, principalID, orderID)
	}
	return []model.RefundRequest{{ID: uuid.New(), OrderID: orderID, Status: model.RefundPending}}, nil
}

// DisputeFacadeStub simulates dispute and mediation operations.
type DisputeFacadeStub struct {
	FileFn        func(context.Context, uuid.UUID, uuid.UUID, string, string) (*model.Dispute, error)
	GetFn         func(context.Context, uuid.UUID, uuid.UUID) (*model.Dispute, error)
	AcceptFn      func(context.Context, uuid.UUID, uuid.UUID) (*model.Dispute, error)
	JoinFn        func(context.Context, uuid.UUID, uuid.UUID) error
	HeartbeatFn   func(context.Context, uuid.UUID, uuid.UUID) error
	PresenceFn    func(context.Context, uuid.UUID, uuid.UUID) (*usecase.PresenceView, error)
	PostMessageFn func(context.Context, uuid.UUID, uuid.UUID, string, *string, *uuid.UUID) (*model.MediationMessage, error)
	MessagesFn    func(context.Context, uuid.UUID, uuid.UUID) ([]model.MediationMessage, error)
	CloseFn       func(context.Context, uuid.UUID, uuid.UUID) error
}

// FileDispute delegates to the override or returns a new pending dispute.
func (s DisputeFacadeStub) FileDispute(ctx context.Context, principalID, orderID uuid.UUID, reason, details string) (*model.Dispute, error) {
	if s.FileFn != nil {
		return s.FileFn(ctx, principalID, orderID, reason, details)
	}
	return &model.Dispute{ID: uuid.New(), OrderID: orderID, Reason: reason, Details: details, SessionStatus: model.SessionPending}, nil
}

// Dispute returns the configured dispute.
func (s DisputeFacadeStub) Dispute(ctx context.Context, principalID, disputeID uuid.UUID) (*model.Dispute, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, principalID, disputeID)
	}
	return &model.Dispute{ID: disputeID, SessionStatus: model.SessionPending}, nil
}

// AcceptDisputeRules executes the configured handler.
func (s DisputeFacadeStub) AcceptDisputeRules(ctx context.Context, principalID, disputeID uuid.UUID) (*model.Dispute, error) {
	if s.AcceptFn != nil {
		return s.AcceptFn(ctx, principalID, disputeID)
	}
	return &model.Dispute{ID: disputeID, ClientAcceptedRules: true, SessionStatus: model.SessionPending}, nil
}

// JoinDispute executes the configured handler.
func (s DisputeFacadeStub) JoinDispute(ctx context.Context, principalID, disputeID uuid.UUID) error {
	if s.JoinFn != nil {
		return s.JoinFn(ctx, principalID, disputeID)
	}
	return nil
}

// DisputeHeartbeat executes the configured handler.
func (s DisputeFacadeStub) DisputeHeartbeat(ctx context.Context, principalID, disputeID uuid.UUID) error {
	if s.HeartbeatFn != nil {
		return s.HeartbeatFn(ctx, principalID, disputeID)
	}
	return nil
}

// DisputePresence returns a configured presence snapshot.
func (s DisputeFacadeStub) DisputePresence(ctx context.Context, principalID, disputeID uuid.UUID) (*usecase.PresenceView, error) {
	if s.PresenceFn != nil {
		return s.PresenceFn(ctx, principalID, disputeID)
	}
	return &usecase.PresenceView{SessionStatus: model.SessionPending}, nil
}

// PostDisputeMessage delegates to the override or echoes the message.
func (s DisputeFacadeStub) PostDisputeMessage(ctx context.Context, principalID, disputeID uuid.UUID, content string, mediaRef *string, replyTo *uuid.UUID) (*model.MediationMessage, error) {
	if s.PostMessageFn != nil {
		return s.PostMessageFn(ctx, principalID, disputeID, content, mediaRef, replyTo)
	}
	return &model.MediationMessage{ID: uuid.New(), DisputeID: disputeID, SenderID: principalID, Content: content, MediaRef: mediaRef, ReplyTo: replyTo}, nil
}

// DisputeMessages returns configured transcript.
func (s DisputeFacadeStub) DisputeMessages(ctx context.Context, principalID, disputeID uuid.UUID) ([]model.MediationMessage, error) {
	if s.MessagesFn != nil {
		return s.MessagesFn(ctx, principalID, disputeID)
	}
	return []model.MediationMessage{{ID: uuid.New(), DisputeID: disputeID, Content: "hello"}}, nil
}

// CloseDispute executes the configured handler.
func (s DisputeFacadeStub) CloseDispute(ctx context.Context, principalID, disputeID uuid.UUID) error {
	if s.CloseFn != nil {
		return s.CloseFn(ctx, principalID, disputeID)
	}
	return nil
}

// MarketplaceFacadeStub aggregates facade dependencies for HTTP layer tests.
type MarketplaceFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	LedgerFacadeStub
	RefundFacadeStub
	DisputeFacadeStub
}

// MonitorFacadeStub mimics the presence monitor's view of the application.
type MonitorFacadeStub struct {
	Pending    [][]model.Dispute
	PendingFn  func(context.Context, int) ([]model.Dispute, error)
	ActivateFn func(context.Context, uuid.UUID) (bool, error)

	Activations []uuid.UUID
	mu          sync.Mutex
	callCount   int32
}

// Lock exposes internal mutex for external synchronization.
func (s *MonitorFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *MonitorFacadeStub) Unlock() { s.mu.Unlock() }

// PendingDisputeSessions returns batches from the configured queue.
func (s *MonitorFacadeStub) PendingDisputeSessions(ctx context.Context, limit int) ([]model.Dispute, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.callCount, 1)
	if int(call) <= len(s.Pending) {
		return s.Pending[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// TryActivateDisputeSession records activation attempts.
func (s *MonitorFacadeStub) TryActivateDisputeSession(ctx context.Context, disputeID uuid.UUID) (bool, error) {
	if s.ActivateFn != nil {
		return s.ActivateFn(ctx, disputeID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Activations = append(s.Activations, disputeID)
	return true, nil
}

// PaymentVerifierStub checks nothing and records verified charges.
type PaymentVerifierStub struct {
	VerifyFn func(context.Context, string, int64) error
	Verified []string
}

// VerifyHold records the charge reference and returns the configured result.
func (s *PaymentVerifierStub) VerifyHold(ctx context.Context, chargeRef string, amount int64) error {
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, chargeRef, amount)
	}
	s.Verified = append(s.Verified, chargeRef)
	return nil
}
