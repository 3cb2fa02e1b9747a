package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeSquared-Agency/mimic/internal/config"
	"github.com/MikeSquared-Agency/mimic/internal/corpus"
	"github.com/MikeSquared-Agency/mimic/internal/logging"
	"github.com/MikeSquared-Agency/mimic/internal/replay"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Validate against a clean local copy, never against the server's view.
	convs, err := corpus.LoadFile(cfg.CorpusPath)
	if err != nil {
		slog.Error("failed to load corpus", "error", err)
		os.Exit(1)
	}
	slog.Info("parsed conversations", "conversations", convs.Len())

	runner := replay.NewRunner(replay.Config{
		TargetURL: cfg.TargetURL,
		Workers:   cfg.ReplayWorkers,
	}, convs, slog.Default())

	report, err := runner.Run(ctx)
	if err != nil {
		slog.Error("replay failed", "error", err, "requests", report.Requests)
		os.Exit(1)
	}

	fmt.Printf("\n=== Replay Summary ===\n")
	fmt.Printf("Requests: %d\n", report.Requests)
	fmt.Printf("Exact replies: %d\n", report.Exact)
	fmt.Printf("Accepted alternatives: %d\n", report.Accepted)
	fmt.Printf("Elapsed: %.3fs\n", report.Elapsed.Seconds())
}
