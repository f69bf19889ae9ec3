package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amirhosseinghanipour/lockgate/internal/application/ports"
	"github.com/amirhosseinghanipour/lockgate/internal/domain"
	domerrors "github.com/amirhosseinghanipour/lockgate/internal/domain/errors"
)

const (
	createAccountsTableSQL = `CREATE TABLE IF NOT EXISTS accounts (
		identifier        TEXT PRIMARY KEY,
		id                UUID NOT NULL,
		credential_digest TEXT NOT NULL,
		locked            BOOLEAN NOT NULL DEFAULT FALSE,
		lock_until        TIMESTAMPTZ,
		failure_count     INTEGER NOT NULL DEFAULT 0,
		created_at        TIMESTAMPTZ NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL
	)`
	selectAccountsSQL = `SELECT identifier, id, credential_digest, locked, lock_until, failure_count, created_at, updated_at FROM accounts`
	upsertAccountSQL  = `INSERT INTO accounts (identifier, id, credential_digest, locked, lock_until, failure_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (identifier) DO UPDATE SET
			credential_digest = EXCLUDED.credential_digest,
			locked            = EXCLUDED.locked,
			lock_until        = EXCLUDED.lock_until,
			failure_count     = EXCLUDED.failure_count,
			updated_at        = EXCLUDED.updated_at`
)

// PostgresStore persists accounts in a single table. Every call is bounded by
// a timeout so a stalled database surfaces as a persistence error instead of
// blocking the engine's critical section indefinitely.
type PostgresStore struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresStore(ctx context.Context, url string, timeout time.Duration) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool, timeout: timeout}, nil
}

// EnsureSchema creates the accounts table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.pool.Exec(ctx, createAccountsTableSQL); err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (map[string]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, selectAccountsSQL)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]*domain.Account)
	for rows.Next() {
		a := &domain.Account{}
		if err := rows.Scan(&a.Identifier, &a.ID, &a.CredentialDigest, &a.Locked, &a.LockUntil, &a.FailureCount, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts[a.Identifier] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return accounts, nil
}

// Save upserts every record inside one transaction. Records are never deleted
// in this core, so stale rows cannot exist.
func (s *PostgresStore) Save(ctx context.Context, accounts map[string]*domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domerrors.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	for _, a := range accounts {
		if _, err := tx.Exec(ctx, upsertAccountSQL,
			a.Identifier, a.ID, a.CredentialDigest, a.Locked, a.LockUntil, a.FailureCount, a.CreatedAt, a.UpdatedAt,
		); err != nil {
			return fmt.Errorf("%w: upsert %s: %v", domerrors.ErrPersistence, a.Identifier, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", domerrors.ErrPersistence, err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

var _ ports.CredentialStore = (*PostgresStore)(nil)
