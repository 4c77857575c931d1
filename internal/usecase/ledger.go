package usecase

import (
	"context"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
	"github.com/craftdeal/craftdeal/internal/domain/repository"
)

// LedgerUseCase manages balance reads and transfers between tracked parties.
type LedgerUseCase struct {
	balances repository.BalanceRepository
}

// NewLedgerUseCase constructs LedgerUseCase.
func NewLedgerUseCase(balances repository.BalanceRepository) *LedgerUseCase {
	return &LedgerUseCase{balances: balances}
}

// Balance returns the balance record for a subject. A subject that never
// received funds reads as a zero balance.
func (u *LedgerUseCase) Balance(ctx context.Context, subject model.Subject) (*model.Balance, error) {
	return u.balances.Get(ctx, subject)
}

// Transfer moves funds between two tracked balances. The debit and credit
// commit together with the audit entry or not at all.
func (u *LedgerUseCase) Transfer(ctx context.Context, p model.TransferParams) (*model.LedgerEntry, error) {
	if p.Amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	if p.Source == p.Destination {
		return nil, domainErrors.ErrInvalidAmount
	}
	return u.balances.Transfer(ctx, p)
}

// Credit adds funds to a balance with no tracked source, e.g. initial funding.
func (u *LedgerUseCase) Credit(ctx context.Context, dst model.Subject, amount int64, reason model.LedgerReason, note string) (*model.LedgerEntry, error) {
	if amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	return u.balances.Credit(ctx, dst, amount, reason, note)
}

// History lists the audit trail entries touching a subject, newest first.
func (u *LedgerUseCase) History(ctx context.Context, subject model.Subject) ([]model.LedgerEntry, error) {
	return u.balances.History(ctx, subject)
}
