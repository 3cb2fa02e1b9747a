//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/MikeSquared-Agency/mimic/internal/corpus"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_WriteAndReadSnapshot(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	convs := corpus.Merge([]corpus.RawFragment{
		{RawID: "it_0", Messages: []corpus.Message{
			{Role: corpus.RoleUser, Content: "hi"},
			{Role: corpus.RoleAssistant, Content: "hello"},
		}},
		{RawID: "it_1", Messages: []corpus.Message{
			{Role: corpus.RoleAssistant, Content: "hello"},
			{Role: corpus.RoleUser, Content: "bye"},
		}},
	})

	id, err := s.WriteSnapshot(ctx, "integration-test", convs, 0)
	if err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}
	t.Cleanup(func() {
		s.pool.Exec(context.Background(), `DELETE FROM corpus_snapshots WHERE id = $1`, id)
	})

	var conversations, messages int
	var source string
	err = s.pool.QueryRow(ctx, `
		SELECT source, conversations, messages FROM corpus_snapshots WHERE id = $1`, id,
	).Scan(&source, &conversations, &messages)
	if err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}
	if conversations != 1 || messages != 3 {
		t.Errorf("expected 1 conversation and 3 messages, got %d and %d", conversations, messages)
	}
	if source != "integration-test" {
		t.Errorf("expected source integration-test, got %q", source)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT role, content FROM snapshot_messages
		WHERE snapshot_id = $1 AND conversation_id = $2
		ORDER BY position`, id, "it")
	if err != nil {
		t.Fatalf("failed to read messages: %v", err)
	}
	defer rows.Close()

	var msgs []corpus.Message
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		r, err := corpus.ParseRole(role)
		if err != nil {
			t.Fatalf("stored role %q does not parse: %v", role, err)
		}
		msgs = append(msgs, corpus.Message{Role: r, Content: content})
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows failed: %v", err)
	}

	want, _ := convs.Get("it")
	if len(msgs) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(msgs))
	}
	for i := range want {
		if msgs[i] != want[i] {
			t.Errorf("msg[%d] = %+v, want %+v", i, msgs[i], want[i])
		}
	}
}
