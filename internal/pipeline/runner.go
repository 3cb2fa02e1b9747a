package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/mimic/internal/corpus"
	"github.com/MikeSquared-Agency/mimic/internal/faults"
	"github.com/MikeSquared-Agency/mimic/internal/index"
)

// Config holds the build phase configuration.
type Config struct {
	CorpusPath       string
	InjectFaults     bool
	FaultProbability float64 // used only when InjectFaults is set
	FaultSeed        uint64  // 0 picks a random seed
}

// Result is everything the serving side needs. Both stores are read-only.
type Result struct {
	Conversations *corpus.Conversations
	Index         *index.Index
	Corrupted     int
	Elapsed       time.Duration
}

// Runner runs the one-shot build: load, optionally corrupt, index.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

// NewRunner creates a build runner.
func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// Run loads the configured corpus file and builds the index.
func (r *Runner) Run() (*Result, error) {
	start := time.Now()
	r.logger.Info("loading corpus", "path", r.cfg.CorpusPath)

	convs, err := corpus.LoadFile(r.cfg.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	return r.build(convs, start), nil
}

// RunReader is Run over an already open corpus stream.
func (r *Runner) RunReader(src io.Reader) (*Result, error) {
	start := time.Now()

	convs, err := corpus.Load(src)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	return r.build(convs, start), nil
}

func (r *Runner) build(convs *corpus.Conversations, start time.Time) *Result {
	r.logger.Info("parsed conversations",
		"conversations", convs.Len(),
		"messages", convs.MessageCount(),
	)

	res := &Result{Conversations: convs}

	if r.cfg.InjectFaults {
		corrupted := faults.Inject(convs, r.cfg.FaultProbability, faults.NewRand(r.cfg.FaultSeed))
		res.Corrupted = faults.Corrupted(convs, corrupted)
		res.Conversations = corrupted
		r.logger.Warn("fault injection enabled",
			"probability", r.cfg.FaultProbability,
			"corrupted", res.Corrupted,
		)
	}

	res.Index = index.Build(res.Conversations)
	res.Elapsed = time.Since(start)

	r.logger.Info("built keyed responses",
		"keys", res.Index.Len(),
		"candidates", res.Index.CandidateCount(),
		"elapsed", res.Elapsed.String(),
	)
	return res
}
