package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judgequeue/judgequeue/pkg/model"
	"github.com/judgequeue/judgequeue/pkg/providers"
)

func cellFor(questionID string) Cell {
	return Cell{
		Job: model.Job{
			SubmissionID: "sub-1",
			QuestionID:   questionID,
			JudgeID:      "judge-1",
			QueueID:      "queue-1",
		},
		Judges:   map[string]model.Judge{"judge-1": {ID: "judge-1", Active: true}},
		Registry: providers.Registry{},
	}
}

func TestRunAllCollectsEveryResult(t *testing.T) {
	run := func(ctx context.Context, job model.Job, judges map[string]model.Judge, registry providers.Registry) (*model.Evaluation, error) {
		return &model.Evaluation{SubmissionID: job.SubmissionID, QuestionID: job.QuestionID, Verdict: model.VerdictPass}, nil
	}

	c := NewChain(run, 2)
	cells := []Cell{cellFor("q1"), cellFor("q2"), cellFor("q3")}
	results, err := c.RunAll(context.Background(), cells)
	require.NoError(t, err)
	require.Len(t, results, 3)

	seen := map[string]bool{}
	for _, r := range results {
		require.NoError(t, r.Err)
		require.NotNil(t, r.Evaluation)
		seen[r.Evaluation.QuestionID] = true
	}
	assert.True(t, seen["q1"] && seen["q2"] && seen["q3"])
}

func TestRunAllRespectsMaxConcurrency(t *testing.T) {
	var current, max int32
	var mu sync.Mutex

	run := func(ctx context.Context, job model.Job, judges map[string]model.Judge, registry providers.Registry) (*model.Evaluation, error) {
		n := atomic.AddInt32(&current, 1)
		mu.Lock()
		if n > max {
			max = n
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return &model.Evaluation{SubmissionID: job.SubmissionID, QuestionID: job.QuestionID}, nil
	}

	c := NewChain(run, 2)
	cells := []Cell{cellFor("q1"), cellFor("q2"), cellFor("q3"), cellFor("q4")}
	results, err := c.RunAll(context.Background(), cells)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.LessOrEqual(t, int(max), 2)
}

func TestRunAllPropagatesRunnerError(t *testing.T) {
	boom := errors.New("provider exploded")
	run := func(ctx context.Context, job model.Job, judges map[string]model.Judge, registry providers.Registry) (*model.Evaluation, error) {
		if job.QuestionID == "q2" {
			return nil, boom
		}
		return &model.Evaluation{SubmissionID: job.SubmissionID, QuestionID: job.QuestionID}, nil
	}

	c := NewChain(run, 3)
	results, err := c.RunAll(context.Background(), []Cell{cellFor("q1"), cellFor("q2")})
	require.NoError(t, err)
	require.Len(t, results, 2)

	var failures int
	for _, r := range results {
		if r.Err != nil {
			failures++
			assert.ErrorIs(t, r.Err, boom)
		}
	}
	assert.Equal(t, 1, failures)
}

func TestWaitForNextHonorsContextCancellation(t *testing.T) {
	block := make(chan struct{})
	run := func(ctx context.Context, job model.Job, judges map[string]model.Judge, registry providers.Registry) (*model.Evaluation, error) {
		<-block
		return &model.Evaluation{SubmissionID: job.SubmissionID}, nil
	}

	c := NewChain(run, 1)
	c.Dispatch(context.Background(), cellFor("q1"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.WaitForNext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	c.CancelAll()
	close(block)
}

func TestTryGetNextReturnsFalseWhenEmpty(t *testing.T) {
	run := func(ctx context.Context, job model.Job, judges map[string]model.Judge, registry providers.Registry) (*model.Evaluation, error) {
		return &model.Evaluation{}, nil
	}
	c := NewChain(run, 1)
	_, ok := c.TryGetNext()
	assert.False(t, ok)
}

func TestHasPendingReflectsInFlightDispatches(t *testing.T) {
	release := make(chan struct{})
	run := func(ctx context.Context, job model.Job, judges map[string]model.Judge, registry providers.Registry) (*model.Evaluation, error) {
		<-release
		return &model.Evaluation{SubmissionID: job.SubmissionID}, nil
	}

	c := NewChain(run, 1)
	c.Dispatch(context.Background(), cellFor("q1"))
	assert.True(t, c.HasPending())

	close(release)
	_, err := c.WaitForNext(context.Background())
	require.NoError(t, err)
	assert.False(t, c.HasPending())
}
