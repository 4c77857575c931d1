package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
)

// --- EscrowRepository implementation ---

func (r *escrowRepository) Get(ctx context.Context, orderID uuid.UUID) (*model.Escrow, error) {
	const query = `SELECT order_id, amount, status, released_at FROM escrows WHERE order_id=$1`
	var e model.Escrow
	err := r.storage.pool.QueryRow(ctx, query, orderID).Scan(&e.OrderID, &e.Amount, &e.Status, &e.ReleasedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Release flips held to released and credits the provider in one transaction.
// The held-to-released guard is the data-layer defense: a second release finds
// no held row and changes nothing, so at most one credit ever happens.
func (r *escrowRepository) Release(ctx context.Context, orderID uuid.UUID) (bool, error) {
	released := false
	var (
		providerID uuid.UUID
		amount     int64
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const update = `UPDATE escrows SET status='released', released_at=NOW()
                        WHERE order_id=$1 AND status='held'
                        RETURNING amount`
		if err := tx.QueryRow(ctx, update, orderID).Scan(&amount); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.noopOrMissing(ctx, orderID)
			}
			return err
		}
		released = true

		const provider = `SELECT provider_id FROM orders WHERE id=$1`
		if err := tx.QueryRow(ctx, provider, orderID).Scan(&providerID); err != nil {
			return err
		}

		dst := model.Subject{Type: model.SubjectProvider, ID: providerID}
		if err := creditTx(ctx, tx, dst, amount, model.ReasonEscrowRelease); err != nil {
			return err
		}
		_, err := insertLedgerEntryTx(ctx, tx, nil, dst, amount, model.ReasonEscrowRelease, "order "+orderID.String())
		return err
	})
	if err != nil {
		return false, err
	}

	if released {
		dst := model.Subject{Type: model.SubjectProvider, ID: providerID}
		r.storage.recordTransaction(ctx, nil, dst, amount, model.ReasonEscrowRelease)
	}
	return released, nil
}

func (r *escrowRepository) noopOrMissing(ctx context.Context, orderID uuid.UUID) error {
	const query = `SELECT 1 FROM escrows WHERE order_id=$1`
	var one int
	if err := r.storage.pool.QueryRow(ctx, query, orderID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	return nil
}

// --- RefundRepository implementation ---

const refundColumns = `id, order_id, client_id, provider_id, amount, reason, status, admin_notes, created_at, resolved_at`

func (r *refundRepository) Create(ctx context.Context, req *model.RefundRequest) (*model.RefundRequest, error) {
	const insert = `INSERT INTO refund_requests (order_id, client_id, provider_id, amount, reason)
                    VALUES ($1, $2, $3, $4, $5)
                    RETURNING id, status, created_at`
	created := *req
	err := r.storage.pool.QueryRow(ctx, insert, req.OrderID, req.ClientID, req.ProviderID, req.Amount, req.Reason).
		Scan(&created.ID, &created.Status, &created.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *refundRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE id=$1`
	return scanRefund(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *refundRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE order_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.RefundRequest
	for rows.Next() {
		var req model.RefundRequest
		if err := rows.Scan(&req.ID, &req.OrderID, &req.ClientID, &req.ProviderID, &req.Amount,
			&req.Reason, &req.Status, &req.AdminNotes, &req.CreatedAt, &req.ResolvedAt); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Resolve locks the request row, rejects anything not pending, and on approval
// moves the amount provider-to-client in the same transaction. An insufficient
// provider balance aborts the whole resolution and the request stays pending.
func (r *refundRepository) Resolve(ctx context.Context, id uuid.UUID, approved bool, adminNotes string) (*model.RefundRequest, error) {
	var (
		resolved    *model.RefundRequest
		transferred bool
		src         model.Subject
		dst         model.Subject
		amount      int64
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		lock := `SELECT ` + refundColumns + ` FROM refund_requests WHERE id=$1 FOR UPDATE`
		req, err := scanRefund(tx.QueryRow(ctx, lock, id))
		if err != nil {
			return err
		}
		if req.Status != model.RefundPending {
			return domainErrors.ErrAlreadyResolved
		}

		status := model.RefundRejected
		if approved {
			status = model.RefundCompleted

			src = model.Subject{Type: model.SubjectProvider, ID: req.ProviderID}
			dst = model.Subject{Type: model.SubjectClient, ID: req.ClientID}
			amount = req.Amount

			if err := debitTx(ctx, tx, src, amount); err != nil {
				return err
			}
			if err := creditTx(ctx, tx, dst, amount, model.ReasonRefund); err != nil {
				return err
			}
			if _, err := insertLedgerEntryTx(ctx, tx, &src, dst, amount, model.ReasonRefund, "refund "+req.ID.String()); err != nil {
				return err
			}
			transferred = true
		}

		update := `UPDATE refund_requests SET status=$2, admin_notes=$3, resolved_at=NOW()
                   WHERE id=$1
                   RETURNING ` + refundColumns
		resolved, err = scanRefund(tx.QueryRow(ctx, update, id, status, adminNotes))
		return err
	})
	if err != nil {
		return nil, err
	}

	if transferred {
		r.storage.recordTransaction(ctx, &src, dst, amount, model.ReasonRefund)
	}
	return resolved, nil
}

func scanRefund(row pgx.Row) (*model.RefundRequest, error) {
	var req model.RefundRequest
	err := row.Scan(&req.ID, &req.OrderID, &req.ClientID, &req.ProviderID, &req.Amount,
		&req.Reason, &req.Status, &req.AdminNotes, &req.CreatedAt, &req.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}
