package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
)

// --- ProfileRepository implementation ---

func (r *profileRepository) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.Profile, error) {
	const query = `INSERT INTO profiles (login, password_hash, role) VALUES ($1, $2, $3) RETURNING id, created_at`
	var p model.Profile
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash, role).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	p.Login = login
	p.PasswordHash = passwordHash
	p.Role = role
	return &p, nil
}

func (r *profileRepository) GetByLogin(ctx context.Context, login string) (*model.Profile, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM profiles WHERE login=$1`
	return scanProfile(r.storage.pool.QueryRow(ctx, query, login))
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM profiles WHERE id=$1`
	return scanProfile(r.storage.pool.QueryRow(ctx, query, id))
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.Login, &p.PasswordHash, &p.Role, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// --- ProviderRepository implementation ---

func (r *providerRepository) Create(ctx context.Context, profileID uuid.UUID, displayName string) (*model.Provider, error) {
	const query = `INSERT INTO providers (profile_id, display_name) VALUES ($1, $2) RETURNING id, created_at`
	var p model.Provider
	err := r.storage.pool.QueryRow(ctx, query, profileID, displayName).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	p.ProfileID = profileID
	p.DisplayName = displayName
	return &p, nil
}

func (r *providerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	const query = `SELECT id, profile_id, display_name, created_at FROM providers WHERE id=$1`
	return scanProvider(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *providerRepository) GetByProfile(ctx context.Context, profileID uuid.UUID) (*model.Provider, error) {
	const query = `SELECT id, profile_id, display_name, created_at FROM providers WHERE profile_id=$1`
	return scanProvider(r.storage.pool.QueryRow(ctx, query, profileID))
}

func scanProvider(row pgx.Row) (*model.Provider, error) {
	var p model.Provider
	err := row.Scan(&p.ID, &p.ProfileID, &p.DisplayName, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
