package dto

import "time"

// FileDisputeRequest opens a dispute against an order.
type FileDisputeRequest struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
	Details string `json:"details,omitempty"`
}

// DisputeResponse describes a dispute and its mediation session state.
type DisputeResponse struct {
	ID                    string    `json:"id"`
	OrderID               string    `json:"order_id"`
	Reason                string    `json:"reason"`
	Details               string    `json:"details,omitempty"`
	ClientAcceptedRules   bool      `json:"client_accepted_rules"`
	ProviderAcceptedRules bool      `json:"provider_accepted_rules"`
	SessionStatus         string    `json:"session_status"`
	CreatedAt             time.Time `json:"created_at"`
}

// RolePresenceResponse is the presence state of one party.
type RolePresenceResponse struct {
	Role          string    `json:"role"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	Present       bool      `json:"present"`
}

// PresenceResponse is a snapshot of a dispute's presence and session state.
type PresenceResponse struct {
	SessionStatus string                 `json:"session_status"`
	Roles         []RolePresenceResponse `json:"roles"`
}

// PostMessageRequest appends one message to the mediation transcript.
type PostMessageRequest struct {
	Content  string  `json:"content"`
	MediaRef *string `json:"media_ref,omitempty"`
	ReplyTo  *string `json:"reply_to,omitempty"`
}

// MessageResponse describes one transcript entry.
type MessageResponse struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	MediaRef  *string   `json:"media_ref,omitempty"`
	ReplyTo   *string   `json:"reply_to,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
