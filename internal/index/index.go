// Package index maps conversation context to the assistant replies observed
// after it.
//
// The context key of a reply is the concatenation, with no separator, of the
// content of every message before it in its conversation. Keys therefore
// collide when different message splits spell the same text ("ab"+"c" and
// "a"+"bc"); that is accepted, since changing it would change which replies
// count as valid.
package index

import (
	"math/rand/v2"
	"strings"

	"github.com/MikeSquared-Agency/mimic/internal/corpus"
)

// Candidate is a valid reply together with the conversation it came from.
type Candidate struct {
	ConversationID string
	Message        corpus.Message
}

// Index is immutable after Build and safe for concurrent Lookup.
type Index struct {
	byKey      map[string][]Candidate
	candidates int
}

// Key derives the context key for a list of prior messages. The HTTP layer
// and Build must agree on this byte for byte.
func Key(msgs []corpus.Message) string {
	n := 0
	for _, m := range msgs {
		n += len(m.Content)
	}
	var sb strings.Builder
	sb.Grow(n)
	for _, m := range msgs {
		sb.WriteString(m.Content)
	}
	return sb.String()
}

// Build indexes every assistant message under the key of the messages
// preceding it. Candidates under one key are ordered by the iteration order
// of convs, which is first-seen order.
func Build(convs *corpus.Conversations) *Index {
	// Roughly every other message is an assistant reply.
	idx := &Index{byKey: make(map[string][]Candidate, convs.MessageCount()/2)}

	convs.Each(func(id string, msgs []corpus.Message) {
		var prior strings.Builder
		for _, m := range msgs {
			if m.Role == corpus.RoleAssistant {
				key := prior.String()
				idx.byKey[key] = append(idx.byKey[key], Candidate{ConversationID: id, Message: m})
				idx.candidates++
			}
			prior.WriteString(m.Content)
		}
	})

	return idx
}

// Lookup returns a reply for the key. When several replies share the key one
// is picked uniformly at random on every call. The generator is the runtime's
// per-thread source, so concurrent lookups never contend on a lock.
func (i *Index) Lookup(key string) (Candidate, bool) {
	cands := i.byKey[key]
	switch len(cands) {
	case 0:
		return Candidate{}, false
	case 1:
		return cands[0], true
	default:
		return cands[rand.IntN(len(cands))], true
	}
}

// LookupMessages is Lookup on the key derived from msgs.
func (i *Index) LookupMessages(msgs []corpus.Message) (Candidate, bool) {
	return i.Lookup(Key(msgs))
}

// Candidates returns a copy of every reply stored under key.
func (i *Index) Candidates(key string) []Candidate {
	cands := i.byKey[key]
	if len(cands) == 0 {
		return nil
	}
	out := make([]Candidate, len(cands))
	copy(out, cands)
	return out
}

// Len returns the number of distinct keys.
func (i *Index) Len() int {
	return len(i.byKey)
}

// CandidateCount returns the total number of indexed replies.
func (i *Index) CandidateCount() int {
	return i.candidates
}
