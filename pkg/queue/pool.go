package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/judgequeue/judgequeue/pkg/providers"
)

// Pool owns the worker loop plus the background orphan reaper that resets
// jobs abandoned mid-flight by a crashed worker back to pending.
type Pool struct {
	worker *Worker
	jobs   JobStore
	config Config

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	orphanMu         sync.Mutex
	lastOrphanScan   time.Time
	orphansRecovered int
}

// NewPool builds a Pool running one worker loop.
func NewPool(id string, jobs JobStore, judges JudgeCatalog, writer EvaluationWriter, registry providers.Registry, run JudgeRunner, cfg Config) *Pool {
	cfg = cfg.WithDefaults()
	return &Pool{
		worker: NewWorker(id, jobs, judges, writer, registry, run, cfg),
		jobs:   jobs,
		config: cfg,
		stopCh: make(chan struct{}),
	}
}

// Start launches the worker loop and the orphan reaper.
func (p *Pool) Start(ctx context.Context) {
	p.worker.Start(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runOrphanReaper(ctx)
	}()
}

// Stop signals both background loops to stop and waits for them.
func (p *Pool) Stop() {
	p.worker.Stop()
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
}

// Health reports the pool's combined health.
func (p *Pool) Health() Health {
	h := p.worker.Health()
	p.orphanMu.Lock()
	h.LastOrphanScan = p.lastOrphanScan
	h.OrphansRecovered = p.orphansRecovered
	p.orphanMu.Unlock()
	return h
}

func (p *Pool) runOrphanReaper(ctx context.Context) {
	ticker := time.NewTicker(p.config.OrphanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			n, err := p.jobs.ReapOrphans(ctx, int(p.config.OrphanThreshold.Seconds()))
			if err != nil {
				slog.Error("orphan reap failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Warn("reaped orphaned jobs", "count", n)
			}
			p.orphanMu.Lock()
			p.lastOrphanScan = time.Now()
			p.orphansRecovered += n
			p.orphanMu.Unlock()
		}
	}
}
