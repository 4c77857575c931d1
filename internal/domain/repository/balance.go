package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/craftdeal/craftdeal/internal/domain/model"
)

// BalanceRepository manages balance records and the audit ledger.
type BalanceRepository interface {
	Get(ctx context.Context, subject model.Subject) (*model.Balance, error)

	// Transfer atomically debits the source and credits the destination,
	// writing one LedgerEntry. Fails with ErrInsufficientBalance when the
	// source available would go negative; a missing destination record is
	// created with the transferred amount as its opening balance.
	Transfer(ctx context.Context, p model.TransferParams) (*model.LedgerEntry, error)

	// Credit adds funds to a balance with no tracked source.
	Credit(ctx context.Context, dst model.Subject, amount int64, reason model.LedgerReason, note string) (*model.LedgerEntry, error)

	// RecognizeEarning records the provider earning for an order exactly once.
	// Returns false when the earning was already recognized.
	RecognizeEarning(ctx context.Context, orderID, providerID uuid.UUID, amount int64) (bool, error)

	History(ctx context.Context, subject model.Subject) ([]model.LedgerEntry, error)
}
