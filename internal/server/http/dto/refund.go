package dto

import "time"

// RefundRequestPayload describes a client refund claim against an order.
type RefundRequestPayload struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// RefundResolvePayload describes an admin decision on a pending refund.
type RefundResolvePayload struct {
	Approved   bool   `json:"approved"`
	AdminNotes string `json:"admin_notes,omitempty"`
}

// RefundResponse describes a refund request and its resolution state.
type RefundResponse struct {
	ID         string     `json:"id"`
	OrderID    string     `json:"order_id"`
	Amount     int64      `json:"amount"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	AdminNotes string     `json:"admin_notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// EscrowResponse describes the escrow attached to an order.
type EscrowResponse struct {
	OrderID    string     `json:"order_id"`
	Amount     int64      `json:"amount"`
	Status     string     `json:"status"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}
