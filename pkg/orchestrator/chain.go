// Package orchestrator is a reference implementation of the optional
// multi-agent "orchestrator" mode described alongside the core pipeline: an
// external collaborator that chains several judge-cell evaluations for a
// single submission. The core pipeline never imports this package — it
// only exposes the JudgeRunner function type orchestrator consumes
// (pkg/queue.JudgeRunner). This is grounded on the teacher's
// pkg/agent/orchestrator.SubAgentRunner: a bounded-concurrency
// dispatch/collect fan-out, stripped of the teacher's per-sub-agent
// persistence and timeline bookkeeping since a judge cell is a single
// provider call rather than a multi-turn agent execution.
package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/judgequeue/judgequeue/pkg/model"
	"github.com/judgequeue/judgequeue/pkg/providers"
	"github.com/judgequeue/judgequeue/pkg/queue"
)

// Cell is one (job, judge catalog, provider registry) unit of work the
// chain dispatches to a JudgeRunner.
type Cell struct {
	Job      model.Job
	Judges   map[string]model.Judge
	Registry providers.Registry
}

// Result is the outcome of running one Cell.
type Result struct {
	Cell       Cell
	Evaluation *model.Evaluation
	Err        error
}

// Chain fans a batch of judge cells for a single submission out to a
// bounded pool of concurrent JudgeRunner calls and delivers results on a
// buffered channel as they complete, mirroring the teacher's
// SubAgentRunner dispatch/collect shape.
type Chain struct {
	run queue.JudgeRunner
	sem chan struct{}

	mu      sync.Mutex
	pending int32

	resultsCh chan Result
	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewChain builds a Chain that runs at most maxConcurrent cells at once.
func NewChain(run queue.JudgeRunner, maxConcurrent int) *Chain {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Chain{
		run:       run,
		sem:       make(chan struct{}, maxConcurrent),
		resultsCh: make(chan Result, maxConcurrent),
		closeCh:   make(chan struct{}),
	}
}

// Dispatch starts a cell's JudgeRunner call in a goroutine, blocking only
// until a concurrency slot is free. The result is delivered asynchronously
// to TryGetNext/WaitForNext/RunAll.
func (c *Chain) Dispatch(ctx context.Context, cell Cell) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	atomic.AddInt32(&c.pending, 1)

	go func() {
		eval, err := c.run(ctx, cell.Job, cell.Judges, cell.Registry)
		// Free the slot before delivering, so a full results channel never
		// holds a slot that a later Dispatch is waiting for.
		<-c.sem
		result := Result{Cell: cell, Evaluation: eval, Err: err}

		atomic.AddInt32(&c.pending, -1)
		select {
		case c.resultsCh <- result:
		case <-c.closeCh:
		}
	}()
}

// TryGetNext returns a completed result without blocking.
func (c *Chain) TryGetNext() (Result, bool) {
	select {
	case r := <-c.resultsCh:
		return r, true
	default:
		return Result{}, false
	}
}

// WaitForNext blocks until a result is available or ctx is cancelled.
func (c *Chain) WaitForNext(ctx context.Context) (Result, error) {
	select {
	case r := <-c.resultsCh:
		return r, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// HasPending reports whether any dispatched cell has not yet delivered a
// result.
func (c *Chain) HasPending() bool {
	return atomic.LoadInt32(&c.pending) > 0
}

// CancelAll signals in-flight goroutines to drop undelivered results
// instead of blocking on a full channel.
func (c *Chain) CancelAll() {
	c.closeOnce.Do(func() { close(c.closeCh) })
}

// RunAll dispatches every cell and blocks until all have delivered a
// result or ctx is cancelled, returning results in completion order (not
// necessarily the order cells were given).
func (c *Chain) RunAll(ctx context.Context, cells []Cell) ([]Result, error) {
	for _, cell := range cells {
		c.Dispatch(ctx, cell)
	}

	results := make([]Result, 0, len(cells))
	for len(results) < len(cells) {
		r, err := c.WaitForNext(ctx)
		if err != nil {
			c.CancelAll()
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}
