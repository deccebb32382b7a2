// Package config loads the service's environment-driven settings: worker
// tuning, batch sizes, and the HTTP shell's bind address and CORS policy.
// Store credentials are loaded separately by pkg/database.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every environment-driven setting outside of database
// connection parameters.
type Config struct {
	HTTPAddr string
	LogLevel string

	UploadBatchSize      int
	RunJudgesPage        int
	JobBatchSize         int
	EvaluationsPageLimit int

	WorkerConcurrency  int
	WorkerBatch        int
	WorkerPoll         time.Duration
	WorkerJudgeRefresh time.Duration

	OrphanScanInterval time.Duration
	OrphanThreshold    time.Duration

	CORSAllowOrigins []string
}

// LoadFromEnv loads Config from environment variables, applying the
// defaults documented for the service.
func LoadFromEnv() (Config, error) {
	workerPoll, err := parseSeconds(getEnvOrDefault("WORKER_POLL_INTERVAL", "5"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid WORKER_POLL_INTERVAL: %w", err)
	}

	judgeRefresh, err := parseSeconds(getEnvOrDefault("WORKER_JUDGE_REFRESH", "60"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid WORKER_JUDGE_REFRESH: %w", err)
	}

	orphanScan, err := parseSeconds(getEnvOrDefault("ORPHAN_SCAN_INTERVAL", "120"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ORPHAN_SCAN_INTERVAL: %w", err)
	}

	orphanThreshold, err := parseSeconds(getEnvOrDefault("ORPHAN_THRESHOLD", "600"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ORPHAN_THRESHOLD: %w", err)
	}

	cfg := Config{
		HTTPAddr: getEnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		UploadBatchSize:      mustAtoi(getEnvOrDefault("UPLOAD_BATCH_SIZE", "100")),
		RunJudgesPage:        mustAtoi(getEnvOrDefault("RUN_JUDGES_PAGE", "1000")),
		JobBatchSize:         mustAtoi(getEnvOrDefault("JOB_BATCH_SIZE", "500")),
		EvaluationsPageLimit: mustAtoi(getEnvOrDefault("EVALUATIONS_PAGE_LIMIT", "50")),

		WorkerConcurrency:  mustAtoi(getEnvOrDefault("WORKER_CONCURRENCY", "4")),
		WorkerBatch:        mustAtoi(getEnvOrDefault("WORKER_BATCH", "10")),
		WorkerPoll:         workerPoll,
		WorkerJudgeRefresh: judgeRefresh,

		OrphanScanInterval: orphanScan,
		OrphanThreshold:    orphanThreshold,

		CORSAllowOrigins: splitCSV(os.Getenv("CORS_ALLOW_ORIGINS")),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks invariants across the loaded settings.
func (c Config) Validate() error {
	if c.WorkerConcurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1")
	}
	if c.WorkerBatch < 1 {
		return fmt.Errorf("WORKER_BATCH must be at least 1")
	}
	if c.UploadBatchSize < 1 {
		return fmt.Errorf("UPLOAD_BATCH_SIZE must be at least 1")
	}
	return nil
}

func parseSeconds(s string) (time.Duration, error) {
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
