package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus describes the commissioned order lifecycle.
type OrderStatus string

const (
	OrderStatusPaid              OrderStatus = "paid"
	OrderStatusInProgress        OrderStatus = "in_progress"
	OrderStatusDelivered         OrderStatus = "delivered"
	OrderStatusRevisionRequested OrderStatus = "revision_requested"
	OrderStatusDeliveryDelayed   OrderStatus = "delivery_delayed"
	OrderStatusCancelled         OrderStatus = "cancelled"
	OrderStatusCompleted         OrderStatus = "completed"
)

// OrderAction names a lifecycle transition requested by a participant.
type OrderAction string

const (
	ActionStart         OrderAction = "start"
	ActionDeliver       OrderAction = "deliver"
	ActionAccept        OrderAction = "accept"
	ActionRevision      OrderAction = "revision"
	ActionCancel        OrderAction = "cancel"
	ActionReactivate    OrderAction = "reactivate"
	ActionMarkDelayed   OrderAction = "mark_delayed"
	ActionForceComplete OrderAction = "force_complete"
)

// CompletionReason records how an order reached the completed status.
type CompletionReason string

const (
	CompletionNone     CompletionReason = ""
	CompletionAccepted CompletionReason = "accepted"
	CompletionForced   CompletionReason = "forced"
)

// Order is a commissioned order between a client and a provider. All money is
// integer minor units in Currency.
type Order struct {
	ID               uuid.UUID
	ClientID         uuid.UUID
	ProviderID       uuid.UUID
	Status           OrderStatus
	Title            string
	TotalAmount      int64
	Currency         string
	RevisionCount    int
	CompletionReason CompletionReason
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

// OrderDelivery is one delivery attempt on an order. Delivery numbers start at 1
// and increase per order. Rows are never mutated after creation.
type OrderDelivery struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Number      int
	Message     string
	FileRef     *string
	DeliveredAt time.Time
}

// RevisionStatus describes a revision request lifecycle.
type RevisionStatus string

const (
	RevisionPending  RevisionStatus = "pending"
	RevisionResolved RevisionStatus = "resolved"
)

// OrderRevision is a client request to rework a delivered order.
type OrderRevision struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	RequesterID uuid.UUID
	Reason      string
	Status      RevisionStatus
	CreatedAt   time.Time
}
