package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/mimic/internal/api"
	"github.com/MikeSquared-Agency/mimic/internal/config"
	"github.com/MikeSquared-Agency/mimic/internal/hermes"
	"github.com/MikeSquared-Agency/mimic/internal/logging"
	"github.com/MikeSquared-Agency/mimic/internal/pipeline"
	"github.com/MikeSquared-Agency/mimic/internal/store"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	slog.Info("mimic starting", "port", cfg.Port, "corpus", cfg.CorpusPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build phase: any failure here means the corpus is unusable.
	runner := pipeline.NewRunner(pipeline.Config{
		CorpusPath:       cfg.CorpusPath,
		InjectFaults:     cfg.SeedErrors,
		FaultProbability: cfg.FaultProbability,
		FaultSeed:        cfg.FaultSeed,
	}, slog.Default())
	res, err := runner.Run()
	if err != nil {
		slog.Error("failed to build response index", "error", err)
		os.Exit(1)
	}

	// Snapshot export (optional)
	var snapshotID uuid.UUID
	if cfg.DatabaseURL != "" {
		snapshotID = exportSnapshot(ctx, cfg, res)
	}

	// NATS/Hermes (optional)
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)

		built := hermes.NewIndexBuilt(snapshotID,
			res.Conversations.Len(), res.Conversations.MessageCount(),
			res.Index.Len(), res.Index.CandidateCount(), res.Corrupted, res.Elapsed)
		if err := hermesClient.Publish(hermes.SubjectIndexBuilt, built); err != nil {
			slog.Warn("failed to publish index built", "error", err)
		}
	} else {
		slog.Warn("NATS not configured, lookup misses will not be published")
	}

	// HTTP API
	var events api.Publisher
	if hermesClient != nil {
		events = hermesClient
	}
	srv := api.NewServer(cfg.Port, res.Index, res.Conversations, events)
	if cfg.SeedErrors {
		srv.MarkFaulty()
	}
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	// Announce registration
	if hermesClient != nil {
		if err := hermesClient.Publish(hermes.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
			"faulty":    cfg.SeedErrors,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("mimic ready", "port", cfg.Port, "keys", res.Index.Len())

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown error", "error", err)
	}
	slog.Info("mimic stopped")
}

// exportSnapshot writes the served corpus to Postgres. Failures are logged;
// the export is a convenience for external validators and never blocks serving.
func exportSnapshot(ctx context.Context, cfg config.Config, res *pipeline.Result) uuid.UUID {
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Warn("snapshot export skipped, database unavailable", "error", err)
		return uuid.Nil
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		slog.Warn("snapshot export skipped", "error", err)
		return uuid.Nil
	}
	id, err := db.WriteSnapshot(ctx, cfg.CorpusPath, res.Conversations, res.Corrupted)
	if err != nil {
		slog.Warn("snapshot export failed", "error", err)
		return uuid.Nil
	}
	slog.Info("snapshot exported", "snapshot_id", id)
	return id
}
