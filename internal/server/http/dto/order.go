package dto

import "time"

// CreateOrderRequest describes a new commissioned order. Amount is integer
// minor units. ChargeRef references the already-held external charge.
type CreateOrderRequest struct {
	ProviderID string `json:"provider_id"`
	Title      string `json:"title"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency,omitempty"`
	ChargeRef  string `json:"charge_ref,omitempty"`
}

// OrderActionRequest describes one lifecycle action on an order.
type OrderActionRequest struct {
	Action  string  `json:"action"`
	Message string  `json:"message,omitempty"`
	FileRef *string `json:"file_ref,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

// OrderResponse describes an order as returned to participants.
type OrderResponse struct {
	ID               string     `json:"id"`
	ClientID         string     `json:"client_id"`
	ProviderID       string     `json:"provider_id"`
	Status           string     `json:"status"`
	Title            string     `json:"title"`
	Amount           int64      `json:"amount"`
	Currency         string     `json:"currency"`
	RevisionCount    int        `json:"revision_count"`
	CompletionReason string     `json:"completion_reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// DeliveryResponse describes one delivery attempt.
type DeliveryResponse struct {
	Number      int       `json:"number"`
	Message     string    `json:"message"`
	FileRef     *string   `json:"file_ref,omitempty"`
	DeliveredAt time.Time `json:"delivered_at"`
}
