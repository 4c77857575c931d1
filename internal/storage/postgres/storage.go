package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftdeal/craftdeal/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool the storage uses; it lets tests swap
// in a pgxmock pool.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type profileRepository struct {
	storage *Storage
}

type providerRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type escrowRepository struct {
	storage *Storage
}

type refundRepository struct {
	storage *Storage
}

type balanceRepository struct {
	storage *Storage
}

type disputeRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Profiles() repository.ProfileRepository {
	return &profileRepository{storage: s}
}

func (s *Storage) Providers() repository.ProviderRepository {
	return &providerRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Escrows() repository.EscrowRepository {
	return &escrowRepository{storage: s}
}

func (s *Storage) Refunds() repository.RefundRepository {
	return &refundRepository{storage: s}
}

func (s *Storage) Balances() repository.BalanceRepository {
	return &balanceRepository{storage: s}
}

func (s *Storage) Disputes() repository.DisputeRepository {
	return &disputeRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS providers (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            profile_id UUID UNIQUE NOT NULL REFERENCES profiles(id),
            display_name TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            client_id UUID NOT NULL REFERENCES profiles(id),
            provider_id UUID NOT NULL REFERENCES providers(id),
            status TEXT NOT NULL,
            title TEXT NOT NULL DEFAULT '',
            total_amount BIGINT NOT NULL,
            currency CHAR(3) NOT NULL,
            revision_count INT NOT NULL DEFAULT 0,
            completion_reason TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            completed_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS order_deliveries (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            order_id UUID NOT NULL REFERENCES orders(id),
            number INT NOT NULL,
            message TEXT NOT NULL DEFAULT '',
            file_ref TEXT,
            delivered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (order_id, number)
        )`,
		`CREATE TABLE IF NOT EXISTS order_revisions (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            order_id UUID NOT NULL REFERENCES orders(id),
            requester_id UUID NOT NULL,
            reason TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'pending',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS escrows (
            order_id UUID PRIMARY KEY REFERENCES orders(id),
            amount BIGINT NOT NULL,
            status TEXT NOT NULL DEFAULT 'held',
            released_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS refund_requests (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            order_id UUID NOT NULL REFERENCES orders(id),
            client_id UUID NOT NULL,
            provider_id UUID NOT NULL,
            amount BIGINT NOT NULL,
            reason TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'pending',
            admin_notes TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            resolved_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS balances (
            subject_type TEXT NOT NULL,
            subject_id UUID NOT NULL,
            available BIGINT NOT NULL DEFAULT 0 CHECK (available >= 0),
            pending BIGINT NOT NULL DEFAULT 0,
            withdrawn BIGINT NOT NULL DEFAULT 0,
            earned BIGINT NOT NULL DEFAULT 0,
            received BIGINT NOT NULL DEFAULT 0,
            refunded BIGINT NOT NULL DEFAULT 0,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (subject_type, subject_id)
        )`,
		`CREATE TABLE IF NOT EXISTS ledger_entries (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            source_type TEXT,
            source_id UUID,
            destination_type TEXT NOT NULL,
            destination_id UUID NOT NULL,
            amount BIGINT NOT NULL,
            reason TEXT NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS transactions (
            id BIGSERIAL PRIMARY KEY,
            source TEXT,
            destination TEXT NOT NULL,
            amount BIGINT NOT NULL,
            reason TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_earnings (
            order_id UUID PRIMARY KEY REFERENCES orders(id),
            provider_id UUID NOT NULL,
            amount BIGINT NOT NULL,
            recognized_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS disputes (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            order_id UUID UNIQUE NOT NULL REFERENCES orders(id),
            reason TEXT NOT NULL DEFAULT '',
            details TEXT NOT NULL DEFAULT '',
            client_accepted_rules BOOLEAN NOT NULL DEFAULT FALSE,
            provider_accepted_rules BOOLEAN NOT NULL DEFAULT FALSE,
            session_status TEXT NOT NULL DEFAULT 'pending',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS dispute_presence (
            dispute_id UUID NOT NULL REFERENCES disputes(id),
            role TEXT NOT NULL,
            last_heartbeat TIMESTAMPTZ NOT NULL,
            PRIMARY KEY (dispute_id, role)
        )`,
		`CREATE TABLE IF NOT EXISTS mediation_messages (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            dispute_id UUID NOT NULL REFERENCES disputes(id),
            sender_id UUID NOT NULL,
            role TEXT NOT NULL,
            content TEXT NOT NULL DEFAULT '',
            media_ref TEXT,
            reply_to UUID,
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_client ON orders(client_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_provider ON orders(provider_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_destination ON ledger_entries(destination_type, destination_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_dispute ON mediation_messages(dispute_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
