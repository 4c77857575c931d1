package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/craftdeal/craftdeal/internal/domain/model"
)

// DisputeRepository manages disputes, presence records and the mediation
// transcript.
type DisputeRepository interface {
	Create(ctx context.Context, d *model.Dispute) (*model.Dispute, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Dispute, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Dispute, error)

	AcceptRules(ctx context.Context, disputeID uuid.UUID, role model.Role) (*model.Dispute, error)

	UpsertPresence(ctx context.Context, disputeID uuid.UUID, role model.Role, at time.Time) error
	ListPresence(ctx context.Context, disputeID uuid.UUID) ([]model.PresenceRecord, error)

	// ActivateSession flips pending to active iff both sides accepted the rules
	// and both client and provider heartbeats are newer than freshAfter, all
	// evaluated in one statement. Returns false when nothing changed.
	ActivateSession(ctx context.Context, disputeID uuid.UUID, freshAfter time.Time) (bool, error)
	CloseSession(ctx context.Context, disputeID uuid.UUID) error

	// ListPendingSessions returns disputes still waiting for activation, oldest
	// first, for the presence monitor.
	ListPendingSessions(ctx context.Context, limit int) ([]model.Dispute, error)

	InsertMessage(ctx context.Context, m *model.MediationMessage) (*model.MediationMessage, error)
	ListMessages(ctx context.Context, disputeID uuid.UUID) ([]model.MediationMessage, error)
	MarkMessagesRead(ctx context.Context, disputeID, readerID uuid.UUID) error
}
