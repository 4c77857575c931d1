package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
	"github.com/craftdeal/craftdeal/internal/domain/repository"
)

// RolePresence is the derived presence view of one role.
type RolePresence struct {
	Role          model.Role
	LastHeartbeat time.Time
	Present       bool
}

// PresenceView is one consistent snapshot of a dispute's presence state.
type PresenceView struct {
	SessionStatus model.SessionStatus
	Roles         []RolePresence
}

// DisputeUseCase owns rule acceptance, the presence protocol and mediation
// session activation. Authorization for every operation is delegated to the
// identity resolver against the dispute's parent order.
type DisputeUseCase struct {
	disputes  repository.DisputeRepository
	orders    repository.OrderRepository
	identity  *IdentityUseCase
	staleness time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewDisputeUseCase constructs DisputeUseCase. staleness must be at least twice
// the heartbeat interval so one missed heartbeat does not flap presence.
func NewDisputeUseCase(disputes repository.DisputeRepository, orders repository.OrderRepository, identity *IdentityUseCase, staleness time.Duration, logger *slog.Logger) *DisputeUseCase {
	return &DisputeUseCase{
		disputes:  disputes,
		orders:    orders,
		identity:  identity,
		staleness: staleness,
		logger:    logger,
		now:       time.Now,
	}
}

// File opens a dispute on an order. At most one dispute exists per order.
func (u *DisputeUseCase) File(ctx context.Context, principalID, orderID uuid.UUID, reason, details string) (*model.Dispute, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := u.identity.ResolveOrderRole(ctx, principalID, order); err != nil {
		return nil, err
	}

	return u.disputes.Create(ctx, &model.Dispute{
		OrderID:       order.ID,
		Reason:        reason,
		Details:       details,
		SessionStatus: model.SessionPending,
	})
}

// Get returns the dispute with its resolved role for the principal.
func (u *DisputeUseCase) Get(ctx context.Context, principalID, disputeID uuid.UUID) (*model.Dispute, model.Role, error) {
	return u.resolve(ctx, principalID, disputeID)
}

// AcceptRules sets the per-role acceptance flag. Each side accepts
// independently; there is no shared flag, and admins have nothing to accept.
func (u *DisputeUseCase) AcceptRules(ctx context.Context, principalID, disputeID uuid.UUID) (*model.Dispute, error) {
	dispute, role, err := u.resolve(ctx, principalID, disputeID)
	if err != nil {
		return nil, err
	}
	if role != model.RoleClient && role != model.RoleProvider {
		return nil, domainErrors.ErrAccessDenied
	}
	if dispute.SessionStatus == model.SessionClosed {
		return nil, domainErrors.ErrSessionNotActive
	}
	return u.disputes.AcceptRules(ctx, disputeID, role)
}

// Join registers the role's presence record and counts as its first heartbeat.
// A client or provider must have accepted the rules first; admin presence is
// supervisory and never gated.
func (u *DisputeUseCase) Join(ctx context.Context, principalID, disputeID uuid.UUID) error {
	return u.heartbeat(ctx, principalID, disputeID)
}

// Heartbeat refreshes the role's presence. Expected every heartbeat interval
// while the participant stays in the session.
func (u *DisputeUseCase) Heartbeat(ctx context.Context, principalID, disputeID uuid.UUID) error {
	return u.heartbeat(ctx, principalID, disputeID)
}

func (u *DisputeUseCase) heartbeat(ctx context.Context, principalID, disputeID uuid.UUID) error {
	dispute, role, err := u.resolve(ctx, principalID, disputeID)
	if err != nil {
		return err
	}
	if dispute.SessionStatus == model.SessionClosed {
		return domainErrors.ErrSessionNotActive
	}
	if !u.rulesAccepted(dispute, role) {
		return domainErrors.ErrRulesNotAccepted
	}
	return u.disputes.UpsertPresence(ctx, disputeID, role, u.now())
}

// Presence returns a snapshot of both sides' presence. While the session is
// pending it also runs the idempotent server-side activation check, so a
// polling participant observes the transition without being the one to cause
// duplicate side effects.
func (u *DisputeUseCase) Presence(ctx context.Context, principalID, disputeID uuid.UUID) (*PresenceView, error) {
	dispute, _, err := u.resolve(ctx, principalID, disputeID)
	if err != nil {
		return nil, err
	}

	if dispute.SessionStatus == model.SessionPending {
		activated, err := u.TryActivate(ctx, disputeID)
		if err != nil {
			return nil, err
		}
		if activated {
			dispute.SessionStatus = model.SessionActive
		}
	}

	records, err := u.disputes.ListPresence(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	now := u.now()
	view := &PresenceView{SessionStatus: dispute.SessionStatus}
	for _, rec := range records {
		view.Roles = append(view.Roles, RolePresence{
			Role:          rec.Role,
			LastHeartbeat: rec.LastHeartbeat,
			Present:       rec.Fresh(now, u.staleness),
		})
	}
	return view, nil
}

// TryActivate flips a pending session to active iff both client and provider
// are simultaneously present, evaluated from a single consistent read. The
// guard on the pending status makes concurrent detections idempotent.
func (u *DisputeUseCase) TryActivate(ctx context.Context, disputeID uuid.UUID) (bool, error) {
	freshAfter := u.now().Add(-u.staleness)
	activated, err := u.disputes.ActivateSession(ctx, disputeID, freshAfter)
	if err != nil {
		return false, err
	}
	if activated {
		u.logger.Info("mediation session activated", slog.String("dispute_id", disputeID.String()))
	}
	return activated, nil
}

// PostMessage appends to the mediation transcript. Writable only while the
// session is active, and only by a participant whose presence is fresh; admin
// supervision is exempt from the presence requirement.
func (u *DisputeUseCase) PostMessage(ctx context.Context, principalID, disputeID uuid.UUID, content string, mediaRef *string, replyTo *uuid.UUID) (*model.MediationMessage, error) {
	dispute, role, err := u.resolve(ctx, principalID, disputeID)
	if err != nil {
		return nil, err
	}
	if dispute.SessionStatus != model.SessionActive {
		return nil, domainErrors.ErrSessionNotActive
	}

	if role != model.RoleAdmin {
		if err := u.requirePresent(ctx, disputeID, role); err != nil {
			return nil, err
		}
	}

	return u.disputes.InsertMessage(ctx, &model.MediationMessage{
		DisputeID: disputeID,
		SenderID:  principalID,
		Role:      role,
		Content:   content,
		MediaRef:  mediaRef,
		ReplyTo:   replyTo,
	})
}

// Messages returns the transcript and marks entries from other senders as read.
func (u *DisputeUseCase) Messages(ctx context.Context, principalID, disputeID uuid.UUID) ([]model.MediationMessage, error) {
	if _, _, err := u.resolve(ctx, principalID, disputeID); err != nil {
		return nil, err
	}

	messages, err := u.disputes.ListMessages(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	if err := u.disputes.MarkMessagesRead(ctx, disputeID, principalID); err != nil {
		u.logger.Warn("mark messages read failed",
			slog.String("dispute_id", disputeID.String()),
			slog.String("error", err.Error()),
		)
	}
	return messages, nil
}

// Close terminates the mediation session. Admin only; no messages after close.
func (u *DisputeUseCase) Close(ctx context.Context, principalID, disputeID uuid.UUID) error {
	_, role, err := u.resolve(ctx, principalID, disputeID)
	if err != nil {
		return err
	}
	if role != model.RoleAdmin {
		return domainErrors.ErrAccessDenied
	}
	return u.disputes.CloseSession(ctx, disputeID)
}

// PendingSessions lists disputes still waiting for activation, for the
// presence monitor.
func (u *DisputeUseCase) PendingSessions(ctx context.Context, limit int) ([]model.Dispute, error) {
	return u.disputes.ListPendingSessions(ctx, limit)
}

func (u *DisputeUseCase) resolve(ctx context.Context, principalID, disputeID uuid.UUID) (*model.Dispute, model.Role, error) {
	dispute, err := u.disputes.GetByID(ctx, disputeID)
	if err != nil {
		return nil, "", err
	}
	order, err := u.orders.GetByID(ctx, dispute.OrderID)
	if err != nil {
		return nil, "", err
	}
	role, err := u.identity.ResolveOrderRole(ctx, principalID, order)
	if err != nil {
		return nil, "", err
	}
	return dispute, role, nil
}

func (u *DisputeUseCase) rulesAccepted(dispute *model.Dispute, role model.Role) bool {
	switch role {
	case model.RoleClient:
		return dispute.ClientAcceptedRules
	case model.RoleProvider:
		return dispute.ProviderAcceptedRules
	default:
		return true
	}
}

func (u *DisputeUseCase) requirePresent(ctx context.Context, disputeID uuid.UUID, role model.Role) error {
	records, err := u.disputes.ListPresence(ctx, disputeID)
	if err != nil {
		return err
	}
	now := u.now()
	for _, rec := range records {
		if rec.Role == role && rec.Fresh(now, u.staleness) {
			return nil
		}
	}
	return domainErrors.ErrNotPresent
}
