package test

import (
	"context"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
)

// ProfileRepositoryStub stores profiles in-memory for tests.
type ProfileRepositoryStub struct {
	ByLogin map[string]*model.Profile
	ByID    map[uuid.UUID]*model.Profile
	Err     error
}

// NewProfileRepositoryStub constructs stub repository with initialized maps.
func NewProfileRepositoryStub() *ProfileRepositoryStub {
	return &ProfileRepositoryStub{
		ByLogin: make(map[string]*model.Profile),
		ByID:    make(map[uuid.UUID]*model.Profile),
	}
}

// Add seeds a profile and returns it.
func (s *ProfileRepositoryStub) Add(profile *model.Profile) *model.Profile {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	s.ByLogin[profile.Login] = profile
	s.ByID[profile.ID] = profile
	return profile
}

// Create registers a profile unless the login is taken.
func (s *ProfileRepositoryStub) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.Profile, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.ByLogin[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	profile := &model.Profile{ID: uuid.New(), Login: login, PasswordHash: passwordHash, Role: role}
	s.ByLogin[login] = profile
	s.ByID[profile.ID] = profile
	return profile, nil
}

// GetByLogin fetches a profile by login or returns not found.
func (s *ProfileRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.Profile, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if profile, ok := s.ByLogin[login]; ok {
		return profile, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches a profile by identifier or returns not found.
func (s *ProfileRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if profile, ok := s.ByID[id]; ok {
		return profile, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ProviderRepositoryStub stores provider records in-memory for tests.
type ProviderRepositoryStub struct {
	ByID      map[uuid.UUID]*model.Provider
	ByProfile map[uuid.UUID]*model.Provider
	Err       error
}

// NewProviderRepositoryStub constructs stub repository with initialized maps.
func NewProviderRepositoryStub() *ProviderRepositoryStub {
	return &ProviderRepositoryStub{
		ByID:      make(map[uuid.UUID]*model.Provider),
		ByProfile: make(map[uuid.UUID]*model.Provider),
	}
}

// Add seeds a provider record and returns it.
func (s *ProviderRepositoryStub) Add(provider *model.Provider) *model.Provider {
	if provider.ID == uuid.Nil {
		provider.ID = uuid.New()
	}
	s.ByID[provider.ID] = provider
	s.ByProfile[provider.ProfileID] = provider
	return provider
}

// Create registers a provider record for a profile.
func (s *ProviderRepositoryStub) Create(ctx context.Context, profileID uuid.UUID, displayName string) (*model.Provider, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.ByProfile[profileID]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	provider := &model.Provider{ID: uuid.New(), ProfileID: profileID, DisplayName: displayName}
	s.ByID[provider.ID] = provider
	s.ByProfile[profileID] = provider
	return provider, nil
}

// GetByID fetches a provider record by its secondary id.
func (s *ProviderRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if provider, ok := s.ByID[id]; ok {
		return provider, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByProfile fetches a provider record by its underlying profile id.
func (s *ProviderRepositoryStub) GetByProfile(ctx context.Context, profileID uuid.UUID) (*model.Provider, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if provider, ok := s.ByProfile[profileID]; ok {
		return provider, nil
	}
	return nil, domainErrors.ErrNotFound
}

// OrderRepositoryStub keeps orders in-memory and reproduces the guarded
// transition semantics of the real storage.
type OrderRepositoryStub struct {
	Orders     map[uuid.UUID]*model.Order
	Deliveries map[uuid.UUID][]model.OrderDelivery
	Revisions  map[uuid.UUID][]model.OrderRevision

	CreateFn     func(context.Context, *model.Order) (*model.Order, error)
	TransitionFn func(context.Context, uuid.UUID, []model.OrderStatus, model.OrderStatus, model.CompletionReason) (*model.Order, error)
	DeliverFn    func(context.Context, uuid.UUID, []model.OrderStatus, string, *string) (*model.Order, *model.OrderDelivery, error)
}

// NewOrderRepositoryStub constructs stub repository with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		Orders:     make(map[uuid.UUID]*model.Order),
		Deliveries: make(map[uuid.UUID][]model.OrderDelivery),
		Revisions:  make(map[uuid.UUID][]model.OrderRevision),
	}
}

// Add seeds an order and returns it.
func (s *OrderRepositoryStub) Add(order *model.Order) *model.Order {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.Orders[order.ID] = order
	return order
}

// Create stores the order assigning an id.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	stored := *order
	stored.ID = uuid.New()
	stored.Status = model.OrderStatusPaid
	stored.CreatedAt = time.Now()
	s.Orders[stored.ID] = &stored
	return &stored, nil
}

// GetByID fetches an order or returns not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if order, ok := s.Orders[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListByClient returns orders placed by the client.
func (s *OrderRepositoryStub) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Order, error) {
	var out []model.Order
	for _, o := range s.Orders {
		if o.ClientID == clientID {
			out = append(out, *o)
		}
	}
	return out, nil
}

// ListByProvider returns orders assigned to the provider record.
func (s *OrderRepositoryStub) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]model.Order, error) {
	var out []model.Order
	for _, o := range s.Orders {
		if o.ProviderID == providerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

// Transition flips status when the current status passes the guard.
func (s *OrderRepositoryStub) Transition(ctx context.Context, orderID uuid.UUID, from []model.OrderStatus, to model.OrderStatus, reason model.CompletionReason) (*model.Order, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, orderID, from, to, reason)
	}
	order, ok := s.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if !statusIn(order.Status, from) {
		return nil, domainErrors.ErrInvalidTransition
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	if to == model.OrderStatusCompleted {
		order.CompletionReason = reason
		now := time.Now()
		order.CompletedAt = &now
	}
	copied := *order
	return &copied, nil
}

// Deliver records the next-numbered delivery and marks the order delivered.
func (s *OrderRepositoryStub) Deliver(ctx context.Context, orderID uuid.UUID, from []model.OrderStatus, message string, fileRef *string) (*model.Order, *model.OrderDelivery, error) {
	if s.DeliverFn != nil {
		return s.DeliverFn(ctx, orderID, from, message, fileRef)
	}
	order, ok := s.Orders[orderID]
	if !ok {
		return nil, nil, domainErrors.ErrNotFound
	}
	if !statusIn(order.Status, from) {
		return nil, nil, domainErrors.ErrInvalidTransition
	}
	order.Status = model.OrderStatusDelivered
	order.UpdatedAt = time.Now()
	delivery := model.OrderDelivery{
		ID:          uuid.New(),
		OrderID:     orderID,
		Number:      len(s.Deliveries[orderID]) + 1,
		Message:     message,
		FileRef:     fileRef,
		DeliveredAt: time.Now(),
	}
	s.Deliveries[orderID] = append(s.Deliveries[orderID], delivery)
	copied := *order
	return &copied, &delivery, nil
}

// RequestRevision bumps the counter and moves the order back to in_progress.
func (s *OrderRepositoryStub) RequestRevision(ctx context.Context, orderID, requesterID uuid.UUID, reason string) (*model.Order, *model.OrderRevision, error) {
	order, ok := s.Orders[orderID]
	if !ok {
		return nil, nil, domainErrors.ErrNotFound
	}
	if order.Status != model.OrderStatusDelivered {
		return nil, nil, domainErrors.ErrInvalidTransition
	}
	order.Status = model.OrderStatusInProgress
	order.RevisionCount++
	order.UpdatedAt = time.Now()
	revision := model.OrderRevision{
		ID:          uuid.New(),
		OrderID:     orderID,
		RequesterID: requesterID,
		Reason:      reason,
		Status:      model.RevisionPending,
		CreatedAt:   time.Now(),
	}
	s.Revisions[orderID] = append(s.Revisions[orderID], revision)
	copied := *order
	return &copied, &revision, nil
}

// ListDeliveries returns recorded deliveries in order.
func (s *OrderRepositoryStub) ListDeliveries(ctx context.Context, orderID uuid.UUID) ([]model.OrderDelivery, error) {
	return s.Deliveries[orderID], nil
}

func statusIn(status model.OrderStatus, set []model.OrderStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

// EscrowRepositoryStub keeps escrow holds in-memory.
type EscrowRepositoryStub struct {
	Escrows      map[uuid.UUID]*model.Escrow
	ReleaseCalls []uuid.UUID
	ReleaseFn    func(context.Context, uuid.UUID) (bool, error)
}

// NewEscrowRepositoryStub constructs stub repository with initialized maps.
func NewEscrowRepositoryStub() *EscrowRepositoryStub {
	return &EscrowRepositoryStub{Escrows: make(map[uuid.UUID]*model.Escrow)}
}

// Get returns the escrow for an order.
func (s *EscrowRepositoryStub) Get(ctx context.Context, orderID uuid.UUID) (*model.Escrow, error) {
	if escrow, ok := s.Escrows[orderID]; ok {
		copied := *escrow
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// Release flips held to released once; a second call is a recorded no-op.
func (s *EscrowRepositoryStub) Release(ctx context.Context, orderID uuid.UUID) (bool, error) {
	s.ReleaseCalls = append(s.ReleaseCalls, orderID)
	if s.ReleaseFn != nil {
		return s.ReleaseFn(ctx, orderID)
	}
	escrow, ok := s.Escrows[orderID]
	if !ok {
		return false, domainErrors.ErrNotFound
	}
	if escrow.Status == model.EscrowReleased {
		return false, nil
	}
	escrow.Status = model.EscrowReleased
	now := time.Now()
	escrow.ReleasedAt = &now
	return true, nil
}

// RefundRepositoryStub keeps refund requests in-memory.
type RefundRepositoryStub struct {
	Requests  map[uuid.UUID]*model.RefundRequest
	ResolveFn func(context.Context, uuid.UUID, bool, string) (*model.RefundRequest, error)
}

// NewRefundRepositoryStub constructs stub repository with initialized maps.
func NewRefundRepositoryStub() *RefundRepositoryStub {
	return &RefundRepositoryStub{Requests: make(map[uuid.UUID]*model.RefundRequest)}
}

// Create stores a pending refund request assigning an id.
func (s *RefundRepositoryStub) Create(ctx context.Context, req *model.RefundRequest) (*model.RefundRequest, error) {
	stored := *req
	stored.ID = uuid.New()
	stored.Status = model.RefundPending
	stored.CreatedAt = time.Now()
	s.Requests[stored.ID] = &stored
	return &stored, nil
}

// GetByID fetches a refund request or returns not found.
func (s *RefundRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error) {
	if req, ok := s.Requests[id]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListByOrder returns refund requests filed against the order.
func (s *RefundRepositoryStub) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.RefundRequest, error) {
	var out []model.RefundRequest
	for _, r := range s.Requests {
		if r.OrderID == orderID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// Resolve finishes a pending request; a second resolution fails.
func (s *RefundRepositoryStub) Resolve(ctx context.Context, id uuid.UUID, approved bool, adminNotes string) (*model.RefundRequest, error) {
	if s.ResolveFn != nil {
		return s.ResolveFn(ctx, id, approved, adminNotes)
	}
	req, ok := s.Requests[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if req.Status != model.RefundPending {
		return nil, domainErrors.ErrAlreadyResolved
	}
	if approved {
		req.Status = model.RefundCompleted
	} else {
		req.Status = model.RefundRejected
	}
	req.AdminNotes = adminNotes
	now := time.Now()
	req.ResolvedAt = &now
	copied := *req
	return &copied, nil
}

// BalanceRepositoryStub keeps balances and the ledger in-memory, enforcing the
// non-negative invariant the same way the real storage does.
type BalanceRepositoryStub struct {
	Balances map[model.Subject]*model.Balance
	Entries  []model.LedgerEntry
	Earnings map[uuid.UUID]bool

	TransferFn         func(context.Context, model.TransferParams) (*model.LedgerEntry, error)
	RecognizeEarningFn func(context.Context, uuid.UUID, uuid.UUID, int64) (bool, error)
}

// NewBalanceRepositoryStub constructs stub repository with initialized maps.
func NewBalanceRepositoryStub() *BalanceRepositoryStub {
	return &BalanceRepositoryStub{
		Balances: make(map[model.Subject]*model.Balance),
		Earnings: make(map[uuid.UUID]bool),
	}
}

// Seed sets an available balance for a subject.
func (s *BalanceRepositoryStub) Seed(subject model.Subject, available int64) {
	s.Balances[subject] = &model.Balance{Subject: subject, Available: available}
}

// Get returns the balance, zero-valued when no record exists.
func (s *BalanceRepositoryStub) Get(ctx context.Context, subject model.Subject) (*model.Balance, error) {
	if balance, ok := s.Balances[subject]; ok {
		copied := *balance
		return &copied, nil
	}
	return &model.Balance{Subject: subject}, nil
}

// Transfer debits the source and credits the destination atomically.
func (s *BalanceRepositoryStub) Transfer(ctx context.Context, p model.TransferParams) (*model.LedgerEntry, error) {
	if s.TransferFn != nil {
		return s.TransferFn(ctx, p)
	}
	source, ok := s.Balances[p.Source]
	if !ok || source.Available < p.Amount {
		return nil, domainErrors.ErrInsufficientBalance
	}
	source.Available -= p.Amount
	s.credit(p.Destination, p.Amount, p.Reason)

	src := p.Source
	entry := model.LedgerEntry{
		ID:          uuid.New(),
		Source:      &src,
		Destination: p.Destination,
		Amount:      p.Amount,
		Reason:      p.Reason,
		Note:        p.Note,
		CreatedAt:   time.Now(),
	}
	s.Entries = append(s.Entries, entry)
	return &entry, nil
}

// Credit adds funds with no tracked source.
func (s *BalanceRepositoryStub) Credit(ctx context.Context, dst model.Subject, amount int64, reason model.LedgerReason, note string) (*model.LedgerEntry, error) {
	s.credit(dst, amount, reason)
	entry := model.LedgerEntry{
		ID:          uuid.New(),
		Destination: dst,
		Amount:      amount,
		Reason:      reason,
		Note:        note,
		CreatedAt:   time.Now(),
	}
	s.Entries = append(s.Entries, entry)
	return &entry, nil
}

func (s *BalanceRepositoryStub) credit(dst model.Subject, amount int64, reason model.LedgerReason) {
	balance, ok := s.Balances[dst]
	if !ok {
		balance = &model.Balance{Subject: dst}
		s.Balances[dst] = balance
	}
	balance.Available += amount
	switch reason {
	case model.ReasonRefund:
		balance.Refunded += amount
	default:
		balance.Received += amount
	}
}

// RecognizeEarning records the earning once per order.
func (s *BalanceRepositoryStub) RecognizeEarning(ctx context.Context, orderID, providerID uuid.UUID, amount int64) (bool, error) {
	if s.RecognizeEarningFn != nil {
		return s.RecognizeEarningFn(ctx, orderID, providerID, amount)
	}
	if s.Earnings[orderID] {
		return false, nil
	}
	s.Earnings[orderID] = true
	subject := model.Subject{Type: model.SubjectProvider, ID: providerID}
	balance, ok := s.Balances[subject]
	if !ok {
		balance = &model.Balance{Subject: subject}
		s.Balances[subject] = balance
	}
	balance.Earned += amount
	return true, nil
}

// History returns entries where the subject is source or destination.
func (s *BalanceRepositoryStub) History(ctx context.Context, subject model.Subject) ([]model.LedgerEntry, error) {
	var out []model.LedgerEntry
	for _, e := range s.Entries {
		if e.Destination == subject || (e.Source != nil && *e.Source == subject) {
			out = append(out, e)
		}
	}
	return out, nil
}

// DisputeRepositoryStub keeps disputes, presence and the transcript in-memory,
// reproducing the single-statement activation guard.
type DisputeRepositoryStub struct {
	Disputes map[uuid.UUID]*model.Dispute
	ByOrder  map[uuid.UUID]uuid.UUID
	Presence map[uuid.UUID]map[model.Role]time.Time
	Messages map[uuid.UUID][]model.MediationMessage

	ActivateFn func(context.Context, uuid.UUID, time.Time) (bool, error)
}

// NewDisputeRepositoryStub constructs stub repository with initialized maps.
func NewDisputeRepositoryStub() *DisputeRepositoryStub {
	return &DisputeRepositoryStub{
		Disputes: make(map[uuid.UUID]*model.Dispute),
		ByOrder:  make(map[uuid.UUID]uuid.UUID),
		Presence: make(map[uuid.UUID]map[model.Role]time.Time),
		Messages: make(map[uuid.UUID][]model.MediationMessage),
	}
}

// Create stores a dispute; one dispute per order.
func (s *DisputeRepositoryStub) Create(ctx context.Context, d *model.Dispute) (*model.Dispute, error) {
	if _, exists := s.ByOrder[d.OrderID]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	stored := *d
	stored.ID = uuid.New()
	stored.SessionStatus = model.SessionPending
	stored.CreatedAt = time.Now()
	s.Disputes[stored.ID] = &stored
	s.ByOrder[stored.OrderID] = stored.ID
	return &stored, nil
}

// GetByID fetches a dispute or returns not found.
func (s *DisputeRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.Dispute, error) {
	if d, ok := s.Disputes[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByOrder fetches the dispute filed against an order.
func (s *DisputeRepositoryStub) GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Dispute, error) {
	if id, ok := s.ByOrder[orderID]; ok {
		return s.GetByID(ctx, id)
	}
	return nil, domainErrors.ErrNotFound
}

// AcceptRules marks the role's acceptance flag.
func (s *DisputeRepositoryStub) AcceptRules(ctx context.Context, disputeID uuid.UUID, role model.Role) (*model.Dispute, error) {
	d, ok := s.Disputes[disputeID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	switch role {
	case model.RoleClient:
		d.ClientAcceptedRules = true
	case model.RoleProvider:
		d.ProviderAcceptedRules = true
	}
	copied := *d
	return &copied, nil
}

// UpsertPresence records the heartbeat for a role.
func (s *DisputeRepositoryStub) UpsertPresence(ctx context.Context, disputeID uuid.UUID, role model.Role, at time.Time) error {
	if _, ok := s.Disputes[disputeID]; !ok {
		return domainErrors.ErrNotFound
	}
	if s.Presence[disputeID] == nil {
		s.Presence[disputeID] = make(map[model.Role]time.Time)
	}
	s.Presence[disputeID][role] = at
	return nil
}

// ListPresence returns recorded heartbeats.
func (s *DisputeRepositoryStub) ListPresence(ctx context.Context, disputeID uuid.UUID) ([]model.PresenceRecord, error) {
	var out []model.PresenceRecord
	for role, at := range s.Presence[disputeID] {
		out = append(out, model.PresenceRecord{DisputeID: disputeID, Role: role, LastHeartbeat: at})
	}
	return out, nil
}

// ActivateSession flips pending to active iff both sides accepted the rules
// and both heartbeats are newer than freshAfter.
func (s *DisputeRepositoryStub) ActivateSession(ctx context.Context, disputeID uuid.UUID, freshAfter time.Time) (bool, error) {
	if s.ActivateFn != nil {
		return s.ActivateFn(ctx, disputeID, freshAfter)
	}
	d, ok := s.Disputes[disputeID]
	if !ok {
		return false, domainErrors.ErrNotFound
	}
	if d.SessionStatus != model.SessionPending || !d.ClientAcceptedRules || !d.ProviderAcceptedRules {
		return false, nil
	}
	presence := s.Presence[disputeID]
	for _, role := range []model.Role{model.RoleClient, model.RoleProvider} {
		at, ok := presence[role]
		if !ok || !at.After(freshAfter) {
			return false, nil
		}
	}
	d.SessionStatus = model.SessionActive
	return true, nil
}

// CloseSession marks the session closed.
func (s *DisputeRepositoryStub) CloseSession(ctx context.Context, disputeID uuid.UUID) error {
	d, ok := s.Disputes[disputeID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	d.SessionStatus = model.SessionClosed
	return nil
}

// ListPendingSessions returns pending disputes oldest first.
func (s *DisputeRepositoryStub) ListPendingSessions(ctx context.Context, limit int) ([]model.Dispute, error) {
	var out []model.Dispute
	for _, d := range s.Disputes {
		if d.SessionStatus == model.SessionPending {
			out = append(out, *d)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// InsertMessage appends to the transcript of an active session.
func (s *DisputeRepositoryStub) InsertMessage(ctx context.Context, m *model.MediationMessage) (*model.MediationMessage, error) {
	d, ok := s.Disputes[m.DisputeID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if d.SessionStatus != model.SessionActive {
		return nil, domainErrors.ErrSessionNotActive
	}
	stored := *m
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	s.Messages[m.DisputeID] = append(s.Messages[m.DisputeID], stored)
	return &stored, nil
}

// ListMessages returns the transcript in insertion order.
func (s *DisputeRepositoryStub) ListMessages(ctx context.Context, disputeID uuid.UUID) ([]model.MediationMessage, error) {
	return s.Messages[disputeID], nil
}

// MarkMessagesRead marks messages from other senders as read.
func (s *DisputeRepositoryStub) MarkMessagesRead(ctx context.Context, disputeID, readerID uuid.UUID) error {
	messages := s.Messages[disputeID]
	for i := range messages {
		if messages[i].SenderID != readerID {
			messages[i].Read = true
		}
	}
	return nil
}
