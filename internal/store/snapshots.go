package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/mimic/internal/corpus"
)

// messageRows flattens a conversation store into COPY rows, preserving
// conversation order and message positions.
func messageRows(snapshotID uuid.UUID, convs *corpus.Conversations) [][]any {
	rows := make([][]any, 0, convs.MessageCount())
	convs.Each(func(id string, msgs []corpus.Message) {
		for pos, m := range msgs {
			rows = append(rows, []any{snapshotID, id, pos, m.Role.String(), m.Content})
		}
	})
	return rows
}

// WriteSnapshot exports the conversations a server instance is replaying,
// in a single transaction. Returns the new snapshot id.
func (s *Store) WriteSnapshot(ctx context.Context, source string, convs *corpus.Conversations, corrupted int) (uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	snapshotID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO corpus_snapshots (id, source, conversations, messages, corrupted, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		snapshotID, source, convs.Len(), convs.MessageCount(), corrupted,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert snapshot: %w", err)
	}

	rows := messageRows(snapshotID, convs)
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"snapshot_messages"},
		[]string{"snapshot_id", "conversation_id", "position", "role", "content"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("copy messages: %w", err)
	}
	if int(n) != len(rows) {
		return uuid.Nil, fmt.Errorf("copy messages: wrote %d of %d rows", n, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}

	return snapshotID, nil
}
