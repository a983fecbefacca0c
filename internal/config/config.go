package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	RedisURL    string
	DatabaseURL string

	QueueKey       string
	PollTimeoutSec int
	BatchWorkers   int

	ChessComBaseURL string
	HTTPTimeoutSec  int
	UserAgent       string

	TagOverrideDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		QueueKey:        "recap:jobs",
		PollTimeoutSec:  5,
		BatchWorkers:    4,
		ChessComBaseURL: "https://api.chess.com",
		HTTPTimeoutSec:  15,
		UserAgent:       "chess-recap-worker",
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("QUEUE_KEY")); v != "" {
		cfg.QueueKey = v
	}
	if v := strings.TrimSpace(os.Getenv("QUEUE_POLL_TIMEOUT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollTimeoutSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("BATCH_WORKERS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchWorkers = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("CHESSCOM_BASE_URL")); v != "" {
		cfg.ChessComBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_TIMEOUT")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeoutSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_USER_AGENT")); v != "" {
		cfg.UserAgent = v
	}

	cfg.TagOverrideDir = strings.TrimSpace(os.Getenv("TAG_OVERRIDE_DIR"))

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}
