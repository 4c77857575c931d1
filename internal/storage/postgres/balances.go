package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
)

// --- BalanceRepository implementation ---

func (r *balanceRepository) Get(ctx context.Context, subject model.Subject) (*model.Balance, error) {
	const query = `SELECT available, pending, withdrawn, earned, received, refunded, updated_at
                   FROM balances WHERE subject_type=$1 AND subject_id=$2`
	b := model.Balance{Subject: subject}
	err := r.storage.pool.QueryRow(ctx, query, subject.Type, subject.ID).
		Scan(&b.Available, &b.Pending, &b.Withdrawn, &b.Earned, &b.Received, &b.Refunded, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.Balance{Subject: subject}, nil
		}
		return nil, err
	}
	return &b, nil
}

// Transfer debits the source and credits the destination in one transaction.
// The source row is locked for the duration, so concurrent transfers touching
// the same balance serialize and the non-negative invariant holds. The audit
// entry is critical: its failure aborts everything. The generic transaction
// record is telemetry written after commit; its failure is logged only.
func (r *balanceRepository) Transfer(ctx context.Context, p model.TransferParams) (*model.LedgerEntry, error) {
	var entry *model.LedgerEntry
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := debitTx(ctx, tx, p.Source, p.Amount); err != nil {
			return err
		}
		if err := creditTx(ctx, tx, p.Destination, p.Amount, p.Reason); err != nil {
			return err
		}
		var err error
		entry, err = insertLedgerEntryTx(ctx, tx, &p.Source, p.Destination, p.Amount, p.Reason, p.Note)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.storage.recordTransaction(ctx, &p.Source, p.Destination, p.Amount, p.Reason)
	return entry, nil
}

// Credit adds funds with no tracked source, creating the balance on first use.
func (r *balanceRepository) Credit(ctx context.Context, dst model.Subject, amount int64, reason model.LedgerReason, note string) (*model.LedgerEntry, error) {
	var entry *model.LedgerEntry
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := creditTx(ctx, tx, dst, amount, reason); err != nil {
			return err
		}
		var err error
		entry, err = insertLedgerEntryTx(ctx, tx, nil, dst, amount, reason, note)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.storage.recordTransaction(ctx, nil, dst, amount, reason)
	return entry, nil
}

// RecognizeEarning is keyed by order id: the second call finds the earnings
// row already present and changes nothing.
func (r *balanceRepository) RecognizeEarning(ctx context.Context, orderID, providerID uuid.UUID, amount int64) (bool, error) {
	recognized := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insert = `INSERT INTO order_earnings (order_id, provider_id, amount)
                        VALUES ($1, $2, $3)
                        ON CONFLICT (order_id) DO NOTHING`
		tag, err := tx.Exec(ctx, insert, orderID, providerID, amount)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		recognized = true

		const bump = `INSERT INTO balances (subject_type, subject_id, earned)
                      VALUES ($1, $2, $3)
                      ON CONFLICT (subject_type, subject_id) DO UPDATE
                      SET earned = balances.earned + EXCLUDED.earned, updated_at=NOW()`
		_, err = tx.Exec(ctx, bump, model.SubjectProvider, providerID, amount)
		return err
	})
	if err != nil {
		return false, err
	}
	return recognized, nil
}

func (r *balanceRepository) History(ctx context.Context, subject model.Subject) ([]model.LedgerEntry, error) {
	const query = `SELECT id, source_type, source_id, destination_type, destination_id, amount, reason, note, created_at
                   FROM ledger_entries
                   WHERE (destination_type=$1 AND destination_id=$2) OR (source_type=$1 AND source_id=$2)
                   ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, subject.Type, subject.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.LedgerEntry
	for rows.Next() {
		var (
			e       model.LedgerEntry
			srcType *model.SubjectType
			srcID   *uuid.UUID
		)
		if err := rows.Scan(&e.ID, &srcType, &srcID, &e.Destination.Type, &e.Destination.ID,
			&e.Amount, &e.Reason, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		if srcType != nil && srcID != nil {
			e.Source = &model.Subject{Type: *srcType, ID: *srcID}
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// debitTx locks the source row and rejects any debit that would go negative.
// A source with no balance row has nothing to debit.
func debitTx(ctx context.Context, tx pgx.Tx, src model.Subject, amount int64) error {
	const lock = `SELECT available FROM balances WHERE subject_type=$1 AND subject_id=$2 FOR UPDATE`
	var available int64
	if err := tx.QueryRow(ctx, lock, src.Type, src.ID).Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrInsufficientBalance
		}
		return err
	}
	if available < amount {
		return domainErrors.ErrInsufficientBalance
	}

	const update = `UPDATE balances SET available = available - $3, updated_at=NOW()
                    WHERE subject_type=$1 AND subject_id=$2`
	_, err := tx.Exec(ctx, update, src.Type, src.ID, amount)
	return err
}

// creditTx upserts the destination balance: a missing record opens with the
// transferred amount. The cumulative counter matching the reason is bumped.
func creditTx(ctx context.Context, tx pgx.Tx, dst model.Subject, amount int64, reason model.LedgerReason) error {
	refunded := int64(0)
	received := int64(0)
	if reason == model.ReasonRefund {
		refunded = amount
	} else {
		received = amount
	}

	const upsert = `INSERT INTO balances (subject_type, subject_id, available, received, refunded)
                    VALUES ($1, $2, $3, $4, $5)
                    ON CONFLICT (subject_type, subject_id) DO UPDATE
                    SET available = balances.available + EXCLUDED.available,
                        received = balances.received + EXCLUDED.received,
                        refunded = balances.refunded + EXCLUDED.refunded,
                        updated_at=NOW()`
	_, err := tx.Exec(ctx, upsert, dst.Type, dst.ID, amount, received, refunded)
	return err
}

func insertLedgerEntryTx(ctx context.Context, tx pgx.Tx, src *model.Subject, dst model.Subject, amount int64, reason model.LedgerReason, note string) (*model.LedgerEntry, error) {
	const insert = `INSERT INTO ledger_entries (source_type, source_id, destination_type, destination_id, amount, reason, note)
                    VALUES ($1, $2, $3, $4, $5, $6, $7)
                    RETURNING id, created_at`
	entry := model.LedgerEntry{Source: src, Destination: dst, Amount: amount, Reason: reason, Note: note}

	var srcType *model.SubjectType
	var srcID *uuid.UUID
	if src != nil {
		srcType = &src.Type
		srcID = &src.ID
	}
	if err := tx.QueryRow(ctx, insert, srcType, srcID, dst.Type, dst.ID, amount, reason, note).
		Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return nil, err
	}
	return &entry, nil
}

// recordTransaction writes the generic cross-party record after the transfer
// has committed. It is telemetry: failure never unwinds the transfer.
func (s *Storage) recordTransaction(ctx context.Context, src *model.Subject, dst model.Subject, amount int64, reason model.LedgerReason) {
	const insert = `INSERT INTO transactions (source, destination, amount, reason) VALUES ($1, $2, $3, $4)`

	var source *string
	if src != nil {
		v := string(src.Type) + ":" + src.ID.String()
		source = &v
	}
	destination := string(dst.Type) + ":" + dst.ID.String()

	if _, err := s.pool.Exec(ctx, insert, source, destination, amount, reason); err != nil {
		s.logger.Warn("transaction telemetry write failed",
			slog.String("destination", destination),
			slog.String("error", err.Error()),
		)
	}
}
