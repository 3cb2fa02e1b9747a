package corpus

// Conversations is the canonical conversation store: canonical id to the
// merged message sequence, iterated in first-seen order. It is read-only
// once returned by Merge, Load or Merger.Conversations.
type Conversations struct {
	order []string
	byID  map[string][]Message
}

func newConversations(capacity int) *Conversations {
	return &Conversations{
		order: make([]string, 0, capacity),
		byID:  make(map[string][]Message, capacity),
	}
}

// Get returns the messages of a conversation. The slice must not be modified.
func (c *Conversations) Get(id string) ([]Message, bool) {
	msgs, ok := c.byID[id]
	return msgs, ok
}

// Contains reports whether msg appears anywhere in conversation id. Used to
// accept a response that differs from the expected one but still belongs to
// the conversation it claims to come from.
func (c *Conversations) Contains(id string, msg Message) bool {
	for _, m := range c.byID[id] {
		if m == msg {
			return true
		}
	}
	return false
}

// Each calls fn for every conversation in first-seen order.
func (c *Conversations) Each(fn func(id string, msgs []Message)) {
	for _, id := range c.order {
		fn(id, c.byID[id])
	}
}

// Len returns the number of canonical conversations.
func (c *Conversations) Len() int {
	return len(c.order)
}

// MessageCount returns the total number of messages across all conversations.
func (c *Conversations) MessageCount() int {
	n := 0
	for _, msgs := range c.byID {
		n += len(msgs)
	}
	return n
}

// Map returns a new store built by applying fn to every conversation in
// order. fn receives a copy it may modify.
func (c *Conversations) Map(fn func(id string, msgs []Message) []Message) *Conversations {
	out := newConversations(len(c.order))
	for _, id := range c.order {
		src := c.byID[id]
		cp := make([]Message, len(src))
		copy(cp, src)
		out.order = append(out.order, id)
		out.byID[id] = fn(id, cp)
	}
	return out
}
