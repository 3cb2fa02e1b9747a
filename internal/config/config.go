package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port             int
	CorpusPath       string
	LogLevel         string
	SeedErrors       bool
	FaultProbability float64
	FaultSeed        uint64
	DatabaseURL      string
	NatsURL          string
	NatsToken        string
	TargetURL        string
	ReplayWorkers    int
}

func Load() Config {
	return Config{
		Port:             envInt("MIMIC_PORT", 8000),
		CorpusPath:       envStr("CORPUS_PATH", "data/ShareGPT_V3_unfiltered_cleaned_split.json"),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		SeedErrors:       envSet("SEED_ERRORS"),
		FaultProbability: envFloat("FAULT_PROBABILITY", 0.01),
		FaultSeed:        envUint("FAULT_SEED", 0),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		NatsURL:          envStr("NATS_URL", ""),
		NatsToken:        envStr("NATS_TOKEN", ""),
		TargetURL:        envStr("MIMIC_TARGET_URL", "http://127.0.0.1:8000"),
		ReplayWorkers:    envInt("REPLAY_CONCURRENCY", 0),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envUint(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

// envFloat only accepts probabilities in [0, 1].
func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			return f
		}
	}
	return fallback
}

// envSet treats any non-empty value as on, except explicit false spellings.
func envSet(key string) bool {
	v := os.Getenv(key)
	if v == "" {
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return true
}
