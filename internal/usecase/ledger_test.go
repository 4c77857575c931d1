package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
	testhelpers "github.com/craftdeal/craftdeal/internal/test"
	"github.com/craftdeal/craftdeal/internal/usecase"
)

func TestLedgerTransferMovesFunds(t *testing.T) {
	balances := testhelpers.NewBalanceRepositoryStub()
	uc := usecase.NewLedgerUseCase(balances)
	ctx := context.Background()

	source := model.Subject{Type: model.SubjectClient, ID: uuid.New()}
	destination := model.Subject{Type: model.SubjectProvider, ID: uuid.New()}
	balances.Seed(source, 1000)

	entry, err := uc.Transfer(ctx, model.TransferParams{Source: source, Destination: destination, Amount: 300, Reason: model.ReasonDonation})
	if err != nil {
		t.Fatalf("transfer returned error: %v", err)
	}
	if entry.Source == nil || *entry.Source != source || entry.Destination != destination {
		t.Fatalf("unexpected entry endpoints: %+v", entry)
	}

	src, _ := uc.Balance(ctx, source)
	dst, _ := uc.Balance(ctx, destination)
	if src.Available != 700 || dst.Available != 300 {
		t.Fatalf("funds not conserved: source=%d destination=%d", src.Available, dst.Available)
	}
}

func TestLedgerTransferInsufficient(t *testing.T) {
	balances := testhelpers.NewBalanceRepositoryStub()
	uc := usecase.NewLedgerUseCase(balances)
	ctx := context.Background()

	source := model.Subject{Type: model.SubjectClient, ID: uuid.New()}
	destination := model.Subject{Type: model.SubjectProvider, ID: uuid.New()}
	balances.Seed(source, 100)

	if _, err := uc.Transfer(ctx, model.TransferParams{Source: source, Destination: destination, Amount: 101, Reason: model.ReasonDonation}); err != domainErrors.ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	src, _ := uc.Balance(ctx, source)
	dst, _ := uc.Balance(ctx, destination)
	if src.Available != 100 || dst.Available != 0 {
		t.Fatalf("failed transfer must change nothing: source=%d destination=%d", src.Available, dst.Available)
	}
}

func TestLedgerTransferValidation(t *testing.T) {
	uc := usecase.NewLedgerUseCase(testhelpers.NewBalanceRepositoryStub())
	ctx := context.Background()
	subject := model.Subject{Type: model.SubjectClient, ID: uuid.New()}
	other := model.Subject{Type: model.SubjectProvider, ID: uuid.New()}

	if _, err := uc.Transfer(ctx, model.TransferParams{Source: subject, Destination: other, Amount: 0}); err != domainErrors.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for zero amount, got %v", err)
	}
	if _, err := uc.Transfer(ctx, model.TransferParams{Source: subject, Destination: subject, Amount: 10}); err != domainErrors.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for self transfer, got %v", err)
	}
}

func TestLedgerUnknownSubjectReadsZero(t *testing.T) {
	uc := usecase.NewLedgerUseCase(testhelpers.NewBalanceRepositoryStub())
	balance, err := uc.Balance(context.Background(), model.Subject{Type: model.SubjectClient, ID: uuid.New()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.Available != 0 {
		t.Fatalf("expected zero balance, got %d", balance.Available)
	}
}

func TestLedgerHistoryCoversBothDirections(t *testing.T) {
	balances := testhelpers.NewBalanceRepositoryStub()
	uc := usecase.NewLedgerUseCase(balances)
	ctx := context.Background()

	a := model.Subject{Type: model.SubjectClient, ID: uuid.New()}
	b := model.Subject{Type: model.SubjectProvider, ID: uuid.New()}
	balances.Seed(a, 500)

	if _, err := uc.Transfer(ctx, model.TransferParams{Source: a, Destination: b, Amount: 200, Reason: model.ReasonDonation}); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if _, err := uc.Credit(ctx, a, 50, model.ReasonAdjustment, "correction"); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	history, err := uc.History(ctx, a)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected both outgoing and incoming entries, got %d", len(history))
	}
}
