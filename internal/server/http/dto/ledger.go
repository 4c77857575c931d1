package dto

import "time"

// BalanceResponse summarizes one subject's funds in integer minor units.
type BalanceResponse struct {
	Available int64 `json:"available"`
	Pending   int64 `json:"pending"`
	Withdrawn int64 `json:"withdrawn"`
	Earned    int64 `json:"earned,omitempty"`
	Received  int64 `json:"received,omitempty"`
	Refunded  int64 `json:"refunded,omitempty"`
}

// TransferRequest describes a voluntary transfer to another subject.
type TransferRequest struct {
	DestinationType string `json:"destination_type"`
	DestinationID   string `json:"destination_id"`
	Amount          int64  `json:"amount"`
	Note            string `json:"note,omitempty"`
}

// LedgerEntryResponse describes one ledger history entry. Source is absent for
// external inflows such as escrow releases.
type LedgerEntryResponse struct {
	ID              string    `json:"id"`
	SourceType      string    `json:"source_type,omitempty"`
	SourceID        string    `json:"source_id,omitempty"`
	DestinationType string    `json:"destination_type"`
	DestinationID   string    `json:"destination_id"`
	Amount          int64     `json:"amount"`
	Reason          string    `json:"reason"`
	Note            string    `json:"note,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
