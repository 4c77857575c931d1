package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
)

const disputeColumns = `id, order_id, reason, details, client_accepted_rules, provider_accepted_rules, session_status, created_at`

// --- DisputeRepository implementation ---

func (r *disputeRepository) Create(ctx context.Context, d *model.Dispute) (*model.Dispute, error) {
	const insert = `INSERT INTO disputes (order_id, reason, details)
                    VALUES ($1, $2, $3)
                    RETURNING id, client_accepted_rules, provider_accepted_rules, session_status, created_at`
	created := *d
	err := r.storage.pool.QueryRow(ctx, insert, d.OrderID, d.Reason, d.Details).
		Scan(&created.ID, &created.ClientAcceptedRules, &created.ProviderAcceptedRules, &created.SessionStatus, &created.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &created, nil
}

func (r *disputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE id=$1`
	return scanDispute(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *disputeRepository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE order_id=$1`
	return scanDispute(r.storage.pool.QueryRow(ctx, query, orderID))
}

func (r *disputeRepository) AcceptRules(ctx context.Context, disputeID uuid.UUID, role model.Role) (*model.Dispute, error) {
	query := `UPDATE disputes
              SET client_accepted_rules = client_accepted_rules OR $2 = 'client',
                  provider_accepted_rules = provider_accepted_rules OR $2 = 'provider'
              WHERE id=$1
              RETURNING ` + disputeColumns
	return scanDispute(r.storage.pool.QueryRow(ctx, query, disputeID, role))
}

func (r *disputeRepository) UpsertPresence(ctx context.Context, disputeID uuid.UUID, role model.Role, at time.Time) error {
	const upsert = `INSERT INTO dispute_presence (dispute_id, role, last_heartbeat)
                    VALUES ($1, $2, $3)
                    ON CONFLICT (dispute_id, role) DO UPDATE SET last_heartbeat = EXCLUDED.last_heartbeat`
	_, err := r.storage.pool.Exec(ctx, upsert, disputeID, role, at)
	return err
}

func (r *disputeRepository) ListPresence(ctx context.Context, disputeID uuid.UUID) ([]model.PresenceRecord, error) {
	const query = `SELECT dispute_id, role, last_heartbeat FROM dispute_presence WHERE dispute_id=$1 ORDER BY role`
	rows, err := r.storage.pool.Query(ctx, query, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PresenceRecord
	for rows.Next() {
		var p model.PresenceRecord
		if err := rows.Scan(&p.DisputeID, &p.Role, &p.LastHeartbeat); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ActivateSession evaluates rule acceptance and both parties' freshness in a
// single statement, so the decision comes from one consistent read. The guard
// on the pending status makes concurrent detections activate at most once.
func (r *disputeRepository) ActivateSession(ctx context.Context, disputeID uuid.UUID, freshAfter time.Time) (bool, error) {
	const update = `UPDATE disputes SET session_status='active'
                    WHERE id=$1 AND session_status='pending'
                      AND client_accepted_rules AND provider_accepted_rules
                      AND (SELECT COUNT(*) FROM dispute_presence
                           WHERE dispute_id=$1 AND role IN ('client', 'provider') AND last_heartbeat > $2) = 2`
	tag, err := r.storage.pool.Exec(ctx, update, disputeID, freshAfter)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *disputeRepository) CloseSession(ctx context.Context, disputeID uuid.UUID) error {
	const update = `UPDATE disputes SET session_status='closed' WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, update, disputeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *disputeRepository) ListPendingSessions(ctx context.Context, limit int) ([]model.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE session_status='pending' ORDER BY created_at LIMIT $1`
	rows, err := r.storage.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Dispute
	for rows.Next() {
		var d model.Dispute
		if err := rows.Scan(&d.ID, &d.OrderID, &d.Reason, &d.Details,
			&d.ClientAcceptedRules, &d.ProviderAcceptedRules, &d.SessionStatus, &d.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// InsertMessage re-checks the active session at the data layer: the insert
// only happens when the dispute is active at statement time.
func (r *disputeRepository) InsertMessage(ctx context.Context, m *model.MediationMessage) (*model.MediationMessage, error) {
	const insert = `INSERT INTO mediation_messages (dispute_id, sender_id, role, content, media_ref, reply_to)
                    SELECT $1, $2, $3, $4, $5, $6
                    WHERE EXISTS (SELECT 1 FROM disputes WHERE id=$1 AND session_status='active')
                    RETURNING id, is_read, created_at`
	created := *m
	err := r.storage.pool.QueryRow(ctx, insert, m.DisputeID, m.SenderID, m.Role, m.Content, m.MediaRef, m.ReplyTo).
		Scan(&created.ID, &created.Read, &created.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrSessionNotActive
		}
		return nil, err
	}
	return &created, nil
}

func (r *disputeRepository) ListMessages(ctx context.Context, disputeID uuid.UUID) ([]model.MediationMessage, error) {
	const query = `SELECT id, dispute_id, sender_id, role, content, media_ref, reply_to, is_read, created_at
                   FROM mediation_messages WHERE dispute_id=$1 ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.MediationMessage
	for rows.Next() {
		var m model.MediationMessage
		if err := rows.Scan(&m.ID, &m.DisputeID, &m.SenderID, &m.Role, &m.Content,
			&m.MediaRef, &m.ReplyTo, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *disputeRepository) MarkMessagesRead(ctx context.Context, disputeID, readerID uuid.UUID) error {
	const update = `UPDATE mediation_messages SET is_read=TRUE
                    WHERE dispute_id=$1 AND sender_id <> $2 AND NOT is_read`
	_, err := r.storage.pool.Exec(ctx, update, disputeID, readerID)
	return err
}

func scanDispute(row pgx.Row) (*model.Dispute, error) {
	var d model.Dispute
	err := row.Scan(&d.ID, &d.OrderID, &d.Reason, &d.Details,
		&d.ClientAcceptedRules, &d.ProviderAcceptedRules, &d.SessionStatus, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
