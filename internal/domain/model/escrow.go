package model

import (
	"time"

	"github.com/google/uuid"
)

// EscrowStatus tracks held funds on an order. Released is terminal.
type EscrowStatus string

const (
	EscrowHeld     EscrowStatus = "held"
	EscrowReleased EscrowStatus = "released"
)

// Escrow is the one-to-one hold record for an order's payment.
type Escrow struct {
	OrderID    uuid.UUID
	Amount     int64
	Status     EscrowStatus
	ReleasedAt *time.Time
}

// RefundStatus tracks a refund request. Completed and rejected are terminal.
type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundCompleted RefundStatus = "completed"
	RefundRejected  RefundStatus = "rejected"
)

// RefundRequest is a client's request to claw back up to the order total.
type RefundRequest struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	ClientID   uuid.UUID
	ProviderID uuid.UUID
	Amount     int64
	Reason     string
	Status     RefundStatus
	AdminNotes string
	CreatedAt  time.Time
	ResolvedAt *time.Time
}
