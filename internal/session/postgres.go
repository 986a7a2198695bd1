package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/yexhin/cookie-customer-service/internal/ledger"
)

// PostgresStore keeps one row per session key with the state as JSONB.
// Schema:
//
//	CREATE TABLE sessions (
//	    key        TEXT PRIMARY KEY,
//	    state      JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect session db: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

type sessionRow struct {
	Key   string `db:"key"`
	State []byte `db:"state"`
}

func (s *PostgresStore) Get(ctx context.Context, key string) (*ledger.State, error) {
	var row sessionRow
	err := pgxscan.Get(ctx, s.pool, &row,
		`SELECT key, state FROM sessions WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.DefaultState(), nil
		}
		return nil, fmt.Errorf("get session %s: %w", key, err)
	}

	st := ledger.DefaultState()
	if err := json.Unmarshal(row.State, st); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", key, err)
	}
	return st, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, st *ledger.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", key, err)
	}

	_, err = s.pool.Exec(ctx, `
        INSERT INTO sessions (key, state, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (key) DO UPDATE SET state = $2, updated_at = now()
    `, key, raw)
	if err != nil {
		return fmt.Errorf("put session %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
