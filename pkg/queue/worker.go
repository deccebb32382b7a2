package queue

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/judgequeue/judgequeue/pkg/apperrors"
	"github.com/judgequeue/judgequeue/pkg/model"
	"github.com/judgequeue/judgequeue/pkg/providers"
	"github.com/judgequeue/judgequeue/pkg/retry"
)

// ErrNoJobsAvailable indicates a claim found nothing pending.
var ErrNoJobsAvailable = errors.New("no jobs available")

// WorkerStatus represents the worker loop's current state.
type WorkerStatus string

// Worker status constants.
const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusWorking WorkerStatus = "working"
)

// Worker is the single polling loop described in the worker loop's
// configuration: it claims a batch of pending jobs, fans each one out to
// the judge runner bounded by a concurrency semaphore, and persists the
// outcome of each dispatched job independently.
type Worker struct {
	id       string
	jobs     JobStore
	judges   JudgeCatalog
	registry providers.Registry
	writer   EvaluationWriter
	run      JudgeRunner
	config   Config
	retry    retry.Config

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu            sync.RWMutex
	status        WorkerStatus
	jobsProcessed int
	lastActivity  time.Time

	catalogMu   sync.RWMutex
	catalog     map[string]model.Judge
	catalogLoad time.Time
}

// NewWorker builds a Worker. registry and run are typically
// providers.BuildFromEnv() and judgerunner.Run.
func NewWorker(id string, jobs JobStore, judges JudgeCatalog, writer EvaluationWriter, registry providers.Registry, run JudgeRunner, cfg Config) *Worker {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = 10
	retryCfg.RetryableFunc = apperrors.ShouldRetry

	return &Worker{
		id:           id,
		jobs:         jobs,
		judges:       judges,
		registry:     registry,
		writer:       writer,
		run:          run,
		config:       cfg.WithDefaults(),
		retry:        retryCfg,
		stopCh:       make(chan struct{}),
		status:       WorkerStatusIdle,
		lastActivity: time.Now(),
	}
}

// Start begins the polling loop in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.loop(ctx)
}

// Stop signals the loop to stop and waits for the current batch to finish.
// Safe to call multiple times.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

// Health returns the worker's current health snapshot.
func (w *Worker) Health() Health {
	w.mu.RLock()
	defer w.mu.RUnlock()
	w.catalogMu.RLock()
	defer w.catalogMu.RUnlock()
	return Health{
		Status:           string(w.status),
		JobsProcessed:    w.jobsProcessed,
		LastActivity:     w.lastActivity,
		ActiveJudgeCount: len(w.catalog),
	}
}

func (w *Worker) loop(ctx context.Context) {
	defer w.wg.Done()

	log := slog.With("worker_id", w.id)
	log.Info("worker loop started")

	for {
		select {
		case <-w.stopCh:
			log.Info("worker loop stopping")
			return
		case <-ctx.Done():
			log.Info("context cancelled, worker loop stopping")
			return
		default:
			if err := w.tick(ctx); err != nil {
				if errors.Is(err, ErrNoJobsAvailable) {
					w.sleep(w.config.PollInterval)
					continue
				}
				log.Error("worker tick failed", "error", err)
				w.sleep(w.config.PollInterval)
			}
		}
	}
}

// tick performs one iteration: refresh the judge catalog if stale, claim a
// batch of pending jobs, and dispatch them concurrently.
func (w *Worker) tick(ctx context.Context) error {
	if err := w.refreshCatalogIfStale(ctx); err != nil {
		return err
	}

	jobs, err := w.jobs.Claim(ctx, w.config.BatchSize)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return ErrNoJobsAvailable
	}

	w.setStatus(WorkerStatusWorking)
	defer w.setStatus(WorkerStatusIdle)

	catalog := w.currentCatalog()

	sem := make(chan struct{}, w.config.Concurrency)
	var wg sync.WaitGroup
	for _, job := range jobs {
		job := job
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			w.dispatch(ctx, job, catalog)
		}()
	}
	wg.Wait()

	return nil
}

// dispatch runs one job through the judge runner with local backoff retry,
// then persists the terminal outcome.
func (w *Worker) dispatch(ctx context.Context, job model.Job, catalog map[string]model.Judge) {
	log := slog.With("worker_id", w.id, "job_id", job.ID)

	var eval *model.Evaluation
	err := retry.Do(ctx, w.retry, func() error {
		var runErr error
		eval, runErr = w.run(ctx, job, catalog, w.registry)
		return runErr
	})

	if err != nil {
		if recordErr := w.jobs.RecordFailure(ctx, job.ID, err.Error()); recordErr != nil {
			log.Error("failed to record job failure", "error", recordErr)
		}
		log.Warn("job failed", "error", err)
		return
	}

	if eval != nil {
		if writeErr := w.writer.Write(ctx, *eval); writeErr != nil {
			log.Error("failed to write evaluation, job left for retry", "error", writeErr)
			if recordErr := w.jobs.RecordFailure(ctx, job.ID, writeErr.Error()); recordErr != nil {
				log.Error("failed to record job failure", "error", recordErr)
			}
			return
		}
	}

	if err := w.jobs.MarkDone(ctx, job.ID); err != nil {
		log.Error("failed to mark job done", "error", err)
		return
	}

	w.mu.Lock()
	w.jobsProcessed++
	w.lastActivity = time.Now()
	w.mu.Unlock()
}

func (w *Worker) refreshCatalogIfStale(ctx context.Context) error {
	w.catalogMu.RLock()
	stale := w.catalog == nil || time.Since(w.catalogLoad) >= w.config.JudgesRefresh
	w.catalogMu.RUnlock()
	if !stale {
		return nil
	}

	catalog, err := w.judges.Catalog(ctx)
	if err != nil {
		return err
	}

	w.catalogMu.Lock()
	w.catalog = catalog
	w.catalogLoad = time.Now()
	w.catalogMu.Unlock()
	return nil
}

func (w *Worker) currentCatalog() map[string]model.Judge {
	w.catalogMu.RLock()
	defer w.catalogMu.RUnlock()
	return w.catalog
}

func (w *Worker) setStatus(status WorkerStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.lastActivity = time.Now()
}

// sleep waits for d or until stop is signalled, with up to 20% jitter to
// desynchronize concurrently deployed workers.
func (w *Worker) sleep(d time.Duration) {
	jitter := time.Duration(rand.Int64N(int64(d) / 5))
	select {
	case <-w.stopCh:
	case <-time.After(d + jitter):
	}
}
