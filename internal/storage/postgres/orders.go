package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
)

const orderColumns = `id, client_id, provider_id, status, title, total_amount, currency,
       revision_count, completion_reason, created_at, updated_at, completed_at`

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	created := *order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertOrder = `INSERT INTO orders (client_id, provider_id, status, title, total_amount, currency)
                             VALUES ($1, $2, $3, $4, $5, $6)
                             RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, insertOrder,
			order.ClientID, order.ProviderID, order.Status, order.Title, order.TotalAmount, order.Currency,
		).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
			return err
		}

		// Payment settlement happens upstream; the escrow hold exists from the
		// moment the order does.
		const insertEscrow = `INSERT INTO escrows (order_id, amount) VALUES ($1, $2)`
		if _, err := tx.Exec(ctx, insertEscrow, created.ID, order.TotalAmount); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE client_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, clientID)
}

func (r *orderRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE provider_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, providerID)
}

func (r *orderRepository) list(ctx context.Context, query string, arg any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrderFromRows(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Transition flips status as one guarded statement. The guard failing on an
// existing order reports a rejected precondition, not a missing row.
func (r *orderRepository) Transition(ctx context.Context, orderID uuid.UUID, from []model.OrderStatus, to model.OrderStatus, reason model.CompletionReason) (*model.Order, error) {
	const query = `UPDATE orders
                   SET status=$2,
                       completion_reason=CASE WHEN $3 <> '' THEN $3 ELSE completion_reason END,
                       completed_at=CASE WHEN $2 = 'completed' THEN NOW() ELSE completed_at END,
                       updated_at=NOW()
                   WHERE id=$1 AND status = ANY($4)
                   RETURNING ` + orderColumns

	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, orderID, to, reason, statusStrings(from)))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, r.guardFailure(ctx, orderID)
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) Deliver(ctx context.Context, orderID uuid.UUID, from []model.OrderStatus, message string, fileRef *string) (*model.Order, *model.OrderDelivery, error) {
	var (
		order    *model.Order
		delivery model.OrderDelivery
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const update = `UPDATE orders SET status='delivered', updated_at=NOW()
                        WHERE id=$1 AND status = ANY($2)
                        RETURNING ` + orderColumns
		var err error
		order, err = scanOrder(tx.QueryRow(ctx, update, orderID, statusStrings(from)))
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				return r.guardFailure(ctx, orderID)
			}
			return err
		}

		// The row lock taken by the update serializes delivery numbering.
		const insert = `INSERT INTO order_deliveries (order_id, number, message, file_ref)
                        VALUES ($1, (SELECT COALESCE(MAX(number), 0) + 1 FROM order_deliveries WHERE order_id=$1), $2, $3)
                        RETURNING id, number, delivered_at`
		if err := tx.QueryRow(ctx, insert, orderID, message, fileRef).Scan(&delivery.ID, &delivery.Number, &delivery.DeliveredAt); err != nil {
			return err
		}
		delivery.OrderID = orderID
		delivery.Message = message
		delivery.FileRef = fileRef
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return order, &delivery, nil
}

func (r *orderRepository) RequestRevision(ctx context.Context, orderID, requesterID uuid.UUID, reason string) (*model.Order, *model.OrderRevision, error) {
	var (
		order    *model.Order
		revision model.OrderRevision
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const update = `UPDATE orders SET status='in_progress', revision_count=revision_count+1, updated_at=NOW()
                        WHERE id=$1 AND status='delivered'
                        RETURNING ` + orderColumns
		var err error
		order, err = scanOrder(tx.QueryRow(ctx, update, orderID))
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				return r.guardFailure(ctx, orderID)
			}
			return err
		}

		const insert = `INSERT INTO order_revisions (order_id, requester_id, reason)
                        VALUES ($1, $2, $3)
                        RETURNING id, status, created_at`
		if err := tx.QueryRow(ctx, insert, orderID, requesterID, reason).Scan(&revision.ID, &revision.Status, &revision.CreatedAt); err != nil {
			return err
		}
		revision.OrderID = orderID
		revision.RequesterID = requesterID
		revision.Reason = reason
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return order, &revision, nil
}

func (r *orderRepository) ListDeliveries(ctx context.Context, orderID uuid.UUID) ([]model.OrderDelivery, error) {
	const query = `SELECT id, order_id, number, message, file_ref, delivered_at
                   FROM order_deliveries WHERE order_id=$1 ORDER BY number`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderDelivery
	for rows.Next() {
		var d model.OrderDelivery
		if err := rows.Scan(&d.ID, &d.OrderID, &d.Number, &d.Message, &d.FileRef, &d.DeliveredAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// guardFailure distinguishes a missing order from a rejected precondition.
func (r *orderRepository) guardFailure(ctx context.Context, orderID uuid.UUID) error {
	const query = `SELECT 1 FROM orders WHERE id=$1`
	var one int
	if err := r.storage.pool.QueryRow(ctx, query, orderID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	return domainErrors.ErrInvalidTransition
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.ClientID, &o.ProviderID, &o.Status, &o.Title, &o.TotalAmount, &o.Currency,
		&o.RevisionCount, &o.CompletionReason, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func scanOrderFromRows(rows pgx.Rows) (*model.Order, error) {
	var o model.Order
	if err := rows.Scan(&o.ID, &o.ClientID, &o.ProviderID, &o.Status, &o.Title, &o.TotalAmount, &o.Currency,
		&o.RevisionCount, &o.CompletionReason, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func statusStrings(statuses []model.OrderStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
