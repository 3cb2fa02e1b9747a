// Package faults corrupts conversations on purpose so that response
// validation can be exercised against a server that is known to be wrong.
package faults

import (
	"math/rand/v2"

	"github.com/MikeSquared-Agency/mimic/internal/corpus"
)

const (
	// DefaultProbability is the per-conversation corruption chance used when
	// fault injection is switched on without an explicit probability.
	DefaultProbability = 0.01

	// Suffix is appended to every corrupted message.
	Suffix = "error"
)

// Inject returns a copy of convs where each non-empty conversation is, with
// the given probability, corrupted from a uniformly chosen offset onward.
// Corrupted messages keep their role and position; only Suffix is appended
// to their content. convs itself is never modified.
func Inject(convs *corpus.Conversations, probability float64, rng *rand.Rand) *corpus.Conversations {
	return convs.Map(func(_ string, msgs []corpus.Message) []corpus.Message {
		if len(msgs) == 0 {
			return msgs
		}
		if rng.Float64() >= probability {
			return msgs
		}
		for i := rng.IntN(len(msgs)); i < len(msgs); i++ {
			msgs[i].Content += Suffix
		}
		return msgs
	})
}

// Corrupted reports how many conversations differ between before and after.
func Corrupted(before, after *corpus.Conversations) int {
	n := 0
	after.Each(func(id string, msgs []corpus.Message) {
		orig, _ := before.Get(id)
		for i := range msgs {
			if i >= len(orig) || msgs[i] != orig[i] {
				n++
				return
			}
		}
	})
	return n
}

// NewRand builds a deterministic generator for a seed. A zero seed draws a
// fresh seed from the runtime's entropy source.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
