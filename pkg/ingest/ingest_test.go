package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judgequeue/judgequeue/pkg/apperrors"
	"github.com/judgequeue/judgequeue/pkg/model"
)

type fakeStore struct{ stored []model.Submission }

func (f *fakeStore) UpsertBatch(ctx context.Context, subs []model.Submission) error {
	f.stored = append(f.stored, subs...)
	return nil
}

func TestRunRejectsEmptyBatch(t *testing.T) {
	i := New(&fakeStore{})
	_, err := i.Run(context.Background(), nil)
	require.Error(t, err)
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRunRejectsMissingID(t *testing.T) {
	i := New(&fakeStore{})
	_, err := i.Run(context.Background(), []Input{{QueueID: "q1"}})
	require.Error(t, err)
}

func TestRunComputesFingerprintFromChoiceAndReasoning(t *testing.T) {
	store := &fakeStore{}
	i := New(store)

	inputs := []Input{{
		ID:      "s1",
		QueueID: "q1",
		Answers: map[string]interface{}{
			"q-alpha": map[string]interface{}{"choice": "A", "reasoning": "looks right"},
		},
	}}

	result, err := i.Run(context.Background(), inputs)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Uploaded)
	require.Len(t, store.stored, 1)
	assert.True(t, store.stored[0].HasFingerprint)
	assert.NotZero(t, store.stored[0].AnswerSimhash)
}

func TestRunWhitespaceOnlyDifferenceProducesIdenticalFingerprint(t *testing.T) {
	store := &fakeStore{}
	i := New(store)

	inputs := []Input{
		{ID: "s1", QueueID: "q1", Answers: map[string]interface{}{"q1": "it is blue"}},
		{ID: "s2", QueueID: "q1", Answers: map[string]interface{}{"q1": "it   is blue"}},
	}

	_, err := i.Run(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, store.stored, 2)
	assert.Equal(t, store.stored[0].AnswerSimhash, store.stored[1].AnswerSimhash)
}

func TestRunNoAnswersLeavesFingerprintAbsent(t *testing.T) {
	store := &fakeStore{}
	i := New(store)

	_, err := i.Run(context.Background(), []Input{{ID: "s1", QueueID: "q1"}})
	require.NoError(t, err)
	require.Len(t, store.stored, 1)
	assert.False(t, store.stored[0].HasFingerprint)
}

func TestRunFlushesAcrossBatchBoundary(t *testing.T) {
	store := &fakeStore{}
	i := &Ingester{Store: store, BatchSize: 1}

	inputs := []Input{
		{ID: "s1", QueueID: "q1"},
		{ID: "s2", QueueID: "q1"},
		{ID: "s3", QueueID: "q1"},
	}
	result, err := i.Run(context.Background(), inputs)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Uploaded)
	assert.Len(t, store.stored, 3)
}
