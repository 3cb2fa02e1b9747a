package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS corpus_snapshots (
	id            uuid PRIMARY KEY,
	source        text NOT NULL,
	conversations integer NOT NULL,
	messages      integer NOT NULL,
	corrupted     integer NOT NULL DEFAULT 0,
	created_at    timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS snapshot_messages (
	snapshot_id     uuid NOT NULL REFERENCES corpus_snapshots(id) ON DELETE CASCADE,
	conversation_id text NOT NULL,
	position        integer NOT NULL,
	role            text NOT NULL,
	content         text NOT NULL,
	PRIMARY KEY (snapshot_id, conversation_id, position)
);`

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the snapshot tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}
