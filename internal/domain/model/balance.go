package model

import (
	"time"

	"github.com/google/uuid"
)

// SubjectType partitions balance records by the kind of party holding them.
type SubjectType string

const (
	SubjectAdmin    SubjectType = "admin"
	SubjectProvider SubjectType = "provider"
	SubjectClient   SubjectType = "client"
)

// Subject addresses one balance record.
type Subject struct {
	Type SubjectType
	ID   uuid.UUID
}

// Balance aggregates funds for one subject. Available never goes negative.
type Balance struct {
	Subject   Subject
	Available int64
	Pending   int64
	Withdrawn int64
	// Cumulative counters, never decremented.
	Earned    int64
	Received  int64
	Refunded  int64
	UpdatedAt time.Time
}

// LedgerReason classifies a balance-affecting event.
type LedgerReason string

const (
	ReasonDonation      LedgerReason = "donation"
	ReasonEscrowRelease LedgerReason = "escrow_release"
	ReasonRefund        LedgerReason = "refund"
	ReasonWithdrawal    LedgerReason = "withdrawal"
	ReasonAdjustment    LedgerReason = "adjustment"
)

// LedgerEntry is the immutable audit record of one balance-affecting event.
// Source is nil for credits with no tracked source, e.g. escrow release.
type LedgerEntry struct {
	ID          uuid.UUID
	Source      *Subject
	Destination Subject
	Amount      int64
	Reason      LedgerReason
	Note        string
	CreatedAt   time.Time
}

// TransferParams describes one ledger transfer between tracked balances.
type TransferParams struct {
	Source      Subject
	Destination Subject
	Amount      int64
	Reason      LedgerReason
	Note        string
}
