package hermes

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubjectRegistered = "swarm.agent.mimic.registered"
	SubjectIndexBuilt = "swarm.mimic.index.built"
	SubjectLookupMiss = "swarm.mimic.lookup.miss"
)

// IndexBuilt is published once the response index is ready to serve.
type IndexBuilt struct {
	EventID       uuid.UUID `json:"event_id"`
	SnapshotID    uuid.UUID `json:"snapshot_id"`
	Conversations int       `json:"conversations"`
	Messages      int       `json:"messages"`
	Keys          int       `json:"keys"`
	Candidates    int       `json:"candidates"`
	Corrupted     int       `json:"corrupted"`
	ElapsedMS     int64     `json:"elapsed_ms"`
	Timestamp     time.Time `json:"timestamp"`
}

// LookupMiss is published when a request context has no recorded reply.
// The key itself is not sent; it can be arbitrarily large.
type LookupMiss struct {
	EventID    uuid.UUID `json:"event_id"`
	Messages   int       `json:"messages"`
	ContextLen int       `json:"context_len"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewIndexBuilt stamps an IndexBuilt event with a fresh id and time.
func NewIndexBuilt(snapshotID uuid.UUID, conversations, messages, keys, candidates, corrupted int, elapsed time.Duration) IndexBuilt {
	return IndexBuilt{
		EventID:       uuid.New(),
		SnapshotID:    snapshotID,
		Conversations: conversations,
		Messages:      messages,
		Keys:          keys,
		Candidates:    candidates,
		Corrupted:     corrupted,
		ElapsedMS:     elapsed.Milliseconds(),
		Timestamp:     time.Now().UTC(),
	}
}

// NewLookupMiss stamps a LookupMiss event with a fresh id and time.
func NewLookupMiss(messages, contextLen int) LookupMiss {
	return LookupMiss{
		EventID:    uuid.New(),
		Messages:   messages,
		ContextLen: contextLen,
		Timestamp:  time.Now().UTC(),
	}
}
