// Package queue runs the worker loop that claims pending jobs, dispatches
// them concurrently against the judge runner, and persists their outcome.
package queue

import (
	"context"
	"time"

	"github.com/judgequeue/judgequeue/pkg/model"
	"github.com/judgequeue/judgequeue/pkg/providers"
)

// Config tunes the worker loop. Zero-value fields fall back to the spec's
// documented defaults via WithDefaults.
type Config struct {
	Concurrency     int
	BatchSize       int
	PollInterval    time.Duration
	JudgesRefresh   time.Duration
	MaxAttempts     int
	OrphanInterval  time.Duration
	OrphanThreshold time.Duration
}

// WithDefaults returns a copy of cfg with zero fields replaced by the
// spec's defaults.
func (c Config) WithDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.JudgesRefresh <= 0 {
		c.JudgesRefresh = 60 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = model.MaxAttempts
	}
	if c.OrphanInterval <= 0 {
		c.OrphanInterval = 2 * time.Minute
	}
	if c.OrphanThreshold <= 0 {
		c.OrphanThreshold = 10 * time.Minute
	}
	return c
}

// JobStore is the subset of pkg/store.JobStore the worker loop needs.
type JobStore interface {
	Claim(ctx context.Context, limit int) ([]model.Job, error)
	MarkDone(ctx context.Context, id string) error
	RecordFailure(ctx context.Context, id string, lastErr string) error
	ReapOrphans(ctx context.Context, thresholdSeconds int) (int, error)
}

// JudgeCatalog is the subset of pkg/store.JudgeStore the worker loop needs.
type JudgeCatalog interface {
	Catalog(ctx context.Context) (map[string]model.Judge, error)
}

// EvaluationWriter is satisfied by pkg/evalwriter.Writer.
type EvaluationWriter interface {
	Write(ctx context.Context, eval model.Evaluation) error
}

// JudgeRunner executes a single job against the judge catalog and provider
// registry. Satisfied by pkg/judgerunner.Run.
type JudgeRunner func(ctx context.Context, job model.Job, judges map[string]model.Judge, registry providers.Registry) (*model.Evaluation, error)

// Health reports the worker loop's current state.
type Health struct {
	Status           string    `json:"status"`
	JobsProcessed    int       `json:"jobs_processed"`
	LastActivity     time.Time `json:"last_activity"`
	LastOrphanScan   time.Time `json:"last_orphan_scan"`
	OrphansRecovered int       `json:"orphans_recovered"`
	ActiveJudgeCount int       `json:"active_judge_count"`
}
