package status

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judgequeue/judgequeue/pkg/model"
)

type fakeCounter struct {
	sequence   []model.JobCounts
	idx        int
	all        model.JobCounts
	queueCount int
}

func (f *fakeCounter) CountByQueue(ctx context.Context, queueID string) (model.JobCounts, error) {
	if f.idx >= len(f.sequence) {
		return f.sequence[len(f.sequence)-1], nil
	}
	c := f.sequence[f.idx]
	f.idx++
	return c, nil
}

func (f *fakeCounter) CountAll(ctx context.Context) (model.JobCounts, int, error) {
	return f.all, f.queueCount, nil
}

func TestStatusReturnsTotal(t *testing.T) {
	r := New(&fakeCounter{sequence: []model.JobCounts{{Pending: 1, Running: 2, Done: 3, Failed: 4}}})
	snap, err := r.Status(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Total)
}

func TestSummaryAggregatesAcrossQueues(t *testing.T) {
	counter := &fakeCounter{all: model.JobCounts{Pending: 2, Running: 1, Done: 5, Failed: 1}, queueCount: 3}
	r := New(counter)

	summary, err := r.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, summary.Total)
	assert.Equal(t, 3, summary.QueueCount)
	assert.Equal(t, counter.all, summary.Counts)
}

func TestStreamClosesOnceDrained(t *testing.T) {
	counter := &fakeCounter{sequence: []model.JobCounts{
		{Pending: 1, Done: 0},
		{Pending: 0, Running: 0, Done: 1},
	}}
	r := &Reporter{Jobs: counter, PollInterval: 5 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var snaps []Snapshot
	for snap := range r.Stream(ctx, "q1") {
		snaps = append(snaps, snap)
	}

	require.Len(t, snaps, 2)
	assert.Equal(t, 1, snaps[1].Total)
}

func TestStreamCancellationStopsProducer(t *testing.T) {
	counter := &fakeCounter{sequence: []model.JobCounts{{Pending: 5}}}
	r := &Reporter{Jobs: counter, PollInterval: 2 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	ch := r.Stream(ctx, "q1")
	<-ch
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
}
