package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus tracks the mediation session lifecycle of a dispute.
type SessionStatus string

const (
	SessionPending SessionStatus = "pending"
	SessionActive  SessionStatus = "active"
	SessionClosed  SessionStatus = "closed"
)

// Dispute is filed once per order. Each side accepts the mediation rules
// independently; the session opens only when both sides are verified present.
type Dispute struct {
	ID                    uuid.UUID
	OrderID               uuid.UUID
	Reason                string
	Details               string
	ClientAcceptedRules   bool
	ProviderAcceptedRules bool
	SessionStatus         SessionStatus
	CreatedAt             time.Time
}

// PresenceRecord holds the last heartbeat for one (dispute, role) pair.
type PresenceRecord struct {
	DisputeID     uuid.UUID
	Role          Role
	LastHeartbeat time.Time
}

// Fresh reports whether the record counts as present at the given instant.
func (p PresenceRecord) Fresh(now time.Time, staleness time.Duration) bool {
	return now.Sub(p.LastHeartbeat) < staleness
}

// MediationMessage is one entry of the append-only mediation transcript.
type MediationMessage struct {
	ID        uuid.UUID
	DisputeID uuid.UUID
	SenderID  uuid.UUID
	Role      Role
	Content   string
	MediaRef  *string
	ReplyTo   *uuid.UUID
	Read      bool
	CreatedAt time.Time
}
