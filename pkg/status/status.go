// Package status reports job-queue progress: a point-in-time count and a
// live stream that polls until the queue drains.
package status

import (
	"context"
	"time"

	"github.com/judgequeue/judgequeue/pkg/model"
)

// JobCounter is the subset of pkg/store.JobStore status reporting needs.
type JobCounter interface {
	CountByQueue(ctx context.Context, queueID string) (model.JobCounts, error)
	CountAll(ctx context.Context) (model.JobCounts, int, error)
}

// Reporter answers job-status queries for a queue.
type Reporter struct {
	Jobs         JobCounter
	PollInterval time.Duration
}

// New builds a Reporter with the default one-second live-stream cadence.
func New(jobs JobCounter) *Reporter {
	return &Reporter{Jobs: jobs, PollInterval: time.Second}
}

// Snapshot is one point-in-time status report.
type Snapshot struct {
	Counts model.JobCounts
	Total  int
}

// Status returns the current counts for queueID.
func (r *Reporter) Status(ctx context.Context, queueID string) (Snapshot, error) {
	counts, err := r.Jobs.CountByQueue(ctx, queueID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Counts: counts, Total: counts.Total()}, nil
}

// Summary is a cross-queue status report: job counts summed across every
// queue, plus the number of distinct queues with at least one job.
type Summary struct {
	Counts     model.JobCounts
	Total      int
	QueueCount int
}

// Summary returns the current counts aggregated across every queue.
func (r *Reporter) Summary(ctx context.Context) (Summary, error) {
	counts, queueCount, err := r.Jobs.CountAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Counts: counts, Total: counts.Total(), QueueCount: queueCount}, nil
}

// Stream emits a Snapshot once per PollInterval on the returned channel
// until the queue has drained (pending + running == 0 and total > 0) or
// ctx is cancelled, then closes the channel. The first drained snapshot is
// still delivered before the channel closes.
func (r *Reporter) Stream(ctx context.Context, queueID string) <-chan Snapshot {
	out := make(chan Snapshot)

	interval := r.PollInterval
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		emit := func() (Snapshot, bool, error) {
			snap, err := r.Status(ctx, queueID)
			if err != nil {
				return Snapshot{}, false, err
			}
			drained := snap.Total > 0 && snap.Counts.Pending+snap.Counts.Running == 0
			return snap, drained, nil
		}

		snap, drained, err := emit()
		if err != nil {
			return
		}
		select {
		case out <- snap:
		case <-ctx.Done():
			return
		}
		if drained {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap, drained, err := emit()
				if err != nil {
					return
				}
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
				if drained {
					return
				}
			}
		}
	}()

	return out
}
