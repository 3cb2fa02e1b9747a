package corpus

// defaultCapacity matches the rough size of a full ShareGPT dump.
const defaultCapacity = 10000

// Merger folds fragments into canonical conversations. Fragments must be
// added in source order; the merge is order-dependent.
type Merger struct {
	convs *Conversations
}

// NewMerger creates an empty merger.
func NewMerger() *Merger {
	return &Merger{convs: newConversations(defaultCapacity)}
}

// Add merges one fragment.
//
// A fragment with an unseen canonical id is stored verbatim, even when empty.
// A non-empty fragment for a known id is appended, minus its first message
// when that message equals the conversation's current last message. An empty
// fragment for a known id changes nothing.
func (m *Merger) Add(f RawFragment) {
	id := f.CanonicalID()

	existing, ok := m.convs.byID[id]
	if !ok {
		msgs := make([]Message, len(f.Messages))
		copy(msgs, f.Messages)
		m.convs.order = append(m.convs.order, id)
		m.convs.byID[id] = msgs
		return
	}
	if len(f.Messages) == 0 {
		return
	}

	incoming := f.Messages
	if len(existing) > 0 && existing[len(existing)-1] == incoming[0] {
		incoming = incoming[1:]
	}
	m.convs.byID[id] = append(existing, incoming...)
}

// Conversations returns the merged store. The merger must not be used after.
func (m *Merger) Conversations() *Conversations {
	return m.convs
}

// Merge merges an ordered sequence of fragments.
func Merge(fragments []RawFragment) *Conversations {
	m := NewMerger()
	for _, f := range fragments {
		m.Add(f)
	}
	return m.Conversations()
}
