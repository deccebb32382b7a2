package enqueue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judgequeue/judgequeue/pkg/model"
)

type fakeSubmissions struct{ pages [][]model.Submission }

func (f *fakeSubmissions) ListPage(ctx context.Context, queueID string, offset, limit int) ([]model.Submission, error) {
	idx := offset / limit
	if idx >= len(f.pages) {
		return nil, nil
	}
	return f.pages[idx], nil
}

type fakeAssignments struct{ assignments []model.Assignment }

func (f *fakeAssignments) ListForQueue(ctx context.Context, queueID string) ([]model.Assignment, error) {
	return f.assignments, nil
}

type fakeJobs struct{ inserted []model.Job }

func (f *fakeJobs) InsertBatch(ctx context.Context, jobs []model.Job) error {
	f.inserted = append(f.inserted, jobs...)
	return nil
}

func TestRunSkipsQueueWithNoAssignments(t *testing.T) {
	jobs := &fakeJobs{}
	m := &Materializer{Submissions: &fakeSubmissions{}, Assignments: &fakeAssignments{}, Jobs: jobs, SubmissionPage: 10, JobBatch: 10}
	result, err := m.Run(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
	assert.Empty(t, jobs.inserted)
}

func TestRunEmitsOneJobPerMatchingAssignment(t *testing.T) {
	subs := &fakeSubmissions{pages: [][]model.Submission{
		{
			{ID: "s1", Data: model.SubmissionData{Answers: map[string]interface{}{"q1": "yes"}}},
			{ID: "s2", Data: model.SubmissionData{Questions: []model.Question{{ID: "q2"}}}},
		},
	}}
	assignments := &fakeAssignments{assignments: []model.Assignment{
		{QuestionID: "q1", JudgeID: "j1"},
		{QuestionID: "q2", JudgeID: "j2"},
		{QuestionID: "q3", JudgeID: "j3"},
	}}
	jobs := &fakeJobs{}

	m := &Materializer{Submissions: subs, Assignments: assignments, Jobs: jobs, SubmissionPage: 10, JobBatch: 10}
	result, err := m.Run(context.Background(), "q1")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Enqueued)
	assert.Equal(t, 2, result.SubmissionsCount)
	assert.Equal(t, 3, result.AssignmentsCount)
	assert.Len(t, jobs.inserted, 2)
}

func TestRunMatchesNestedDataShapedQuestion(t *testing.T) {
	var questions []model.Question
	raw := `[{"data": {"id": "q2"}}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &questions))
	require.Equal(t, "q2", questions[0].ID)

	subs := &fakeSubmissions{pages: [][]model.Submission{
		{{ID: "s1", Data: model.SubmissionData{Questions: questions}}},
	}}
	assignments := &fakeAssignments{assignments: []model.Assignment{{QuestionID: "q2", JudgeID: "j1"}}}
	jobs := &fakeJobs{}

	m := &Materializer{Submissions: subs, Assignments: assignments, Jobs: jobs, SubmissionPage: 10, JobBatch: 10}
	result, err := m.Run(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Enqueued)
	assert.Len(t, jobs.inserted, 1)
}

func TestRunFlushesAcrossBatchBoundary(t *testing.T) {
	subs := &fakeSubmissions{pages: [][]model.Submission{
		{
			{ID: "s1", Data: model.SubmissionData{Answers: map[string]interface{}{"q1": "a"}}},
			{ID: "s2", Data: model.SubmissionData{Answers: map[string]interface{}{"q1": "b"}}},
			{ID: "s3", Data: model.SubmissionData{Answers: map[string]interface{}{"q1": "c"}}},
		},
	}}
	assignments := &fakeAssignments{assignments: []model.Assignment{{QuestionID: "q1", JudgeID: "j1"}}}
	jobs := &fakeJobs{}

	m := &Materializer{Submissions: subs, Assignments: assignments, Jobs: jobs, SubmissionPage: 10, JobBatch: 2}
	result, err := m.Run(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Enqueued)
	assert.Len(t, jobs.inserted, 3)
}
