// Package replay checks a running server against the corpus it was built
// from: every assistant turn is requested with its full preceding history
// and the reply is verified.
package replay

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/mimic/internal/corpus"
)

// Config holds the replay configuration.
type Config struct {
	TargetURL string
	Workers   int // 0 means GOMAXPROCS
}

// Report summarizes a completed replay.
type Report struct {
	Requests int64
	Exact    int64 // reply equal to the recorded one
	Accepted int64 // different reply, but present in the conversation it claims
	Elapsed  time.Duration
}

// MismatchError is a reply that is neither the expected message nor part of
// the conversation it claims to come from.
type MismatchError struct {
	ConversationID string
	Position       int
	Expected       string
	Got            corpus.Message
	GotFrom        string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("conversation %s message %d: got %q from %q, expected %q",
		e.ConversationID, e.Position, e.Got.Content, e.GotFrom, e.Expected)
}

// turn is one request to send: the history before an assistant message.
type turn struct {
	conversationID string
	position       int
	history        []corpus.Message
	expected       corpus.Message
}

// Runner replays a corpus against a server.
type Runner struct {
	cfg    Config
	client *Client
	convs  *corpus.Conversations
	logger *slog.Logger
}

// NewRunner creates a replay runner. convs is the locally loaded corpus that
// replies are validated against.
func NewRunner(cfg Config, convs *corpus.Conversations, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		client: NewClient(cfg.TargetURL),
		convs:  convs,
		logger: logger,
	}
}

// Run sends every turn and stops at the first failure.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	workers := r.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var report Report
	start := time.Now()
	r.logger.Info("starting requests", "target", r.cfg.TargetURL, "workers", workers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	r.eachTurn(func(t turn) bool {
		if ctx.Err() != nil {
			return false
		}
		g.Go(func() error {
			return r.check(ctx, t, &report)
		})
		return true
	})

	err := g.Wait()
	report.Elapsed = time.Since(start)
	if err != nil {
		return &report, err
	}

	r.logger.Info("replay complete",
		"requests", report.Requests,
		"exact", report.Exact,
		"accepted", report.Accepted,
		"elapsed_seconds", report.Elapsed.Seconds(),
	)
	return &report, nil
}

func (r *Runner) eachTurn(fn func(turn) bool) {
	stopped := false
	r.convs.Each(func(id string, msgs []corpus.Message) {
		if stopped {
			return
		}
		for i, m := range msgs {
			if m.Role != corpus.RoleAssistant {
				continue
			}
			if !fn(turn{conversationID: id, position: i, history: msgs[:i], expected: m}) {
				stopped = true
				return
			}
		}
	})
}

func (r *Runner) check(ctx context.Context, t turn, report *Report) error {
	resp, err := r.client.Complete(ctx, t.history)
	atomic.AddInt64(&report.Requests, 1)
	if err != nil {
		return fmt.Errorf("conversation %s message %d: %w", t.conversationID, t.position, err)
	}

	if resp.Message == t.expected {
		atomic.AddInt64(&report.Exact, 1)
		return nil
	}

	// Identical histories can have several recorded replies; any of them is
	// valid as long as it really belongs to the conversation named.
	if resp.Message.Role == corpus.RoleAssistant && r.convs.Contains(resp.ID, resp.Message) {
		atomic.AddInt64(&report.Accepted, 1)
		return nil
	}

	return &MismatchError{
		ConversationID: t.conversationID,
		Position:       t.position,
		Expected:       t.expected.Content,
		Got:            resp.Message,
		GotFrom:        resp.ID,
	}
}
