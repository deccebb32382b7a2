// Package enqueue materializes pending evaluation jobs from a queue's
// assignments and submissions.
package enqueue

import (
	"context"

	"github.com/judgequeue/judgequeue/pkg/model"
)

const (
	// DefaultSubmissionPage is how many submissions are loaded per page
	// while scanning a queue for job candidates.
	DefaultSubmissionPage = 1000
	// DefaultJobBatch is how many jobs are buffered before a flush to the
	// store.
	DefaultJobBatch = 500
)

// SubmissionStore is the subset of pkg/store.SubmissionStore enqueue needs.
type SubmissionStore interface {
	ListPage(ctx context.Context, queueID string, offset, limit int) ([]model.Submission, error)
}

// AssignmentStore is the subset of pkg/store.AssignmentStore enqueue needs.
type AssignmentStore interface {
	ListForQueue(ctx context.Context, queueID string) ([]model.Assignment, error)
}

// JobStore is the subset of pkg/store.JobStore enqueue needs.
type JobStore interface {
	InsertBatch(ctx context.Context, jobs []model.Job) error
}

// Result summarizes one materialization run.
type Result struct {
	Enqueued         int
	SubmissionsCount int
	AssignmentsCount int
}

// Materializer builds jobs for a queue's assignments against its
// submissions.
type Materializer struct {
	Submissions    SubmissionStore
	Assignments    AssignmentStore
	Jobs           JobStore
	SubmissionPage int
	JobBatch       int
}

// New builds a Materializer with the default page and batch sizes.
func New(submissions SubmissionStore, assignments AssignmentStore, jobs JobStore) *Materializer {
	return &Materializer{
		Submissions:    submissions,
		Assignments:    assignments,
		Jobs:           jobs,
		SubmissionPage: DefaultSubmissionPage,
		JobBatch:       DefaultJobBatch,
	}
}

// Run pages through queueID's submissions and, for every (submission,
// assignment) pair where the submission actually contains the assignment's
// question, emits a job. Jobs are flushed to the store in batches.
func (m *Materializer) Run(ctx context.Context, queueID string) (Result, error) {
	assignments, err := m.Assignments.ListForQueue(ctx, queueID)
	if err != nil {
		return Result{}, err
	}
	if len(assignments) == 0 {
		return Result{}, nil
	}

	var (
		buffer           []model.Job
		enqueued         int
		submissionsCount int
	)

	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		if err := m.Jobs.InsertBatch(ctx, buffer); err != nil {
			return err
		}
		enqueued += len(buffer)
		buffer = buffer[:0]
		return nil
	}

	page := m.SubmissionPage
	if page <= 0 {
		page = DefaultSubmissionPage
	}
	batch := m.JobBatch
	if batch <= 0 {
		batch = DefaultJobBatch
	}

	for offset := 0; ; offset += page {
		subs, err := m.Submissions.ListPage(ctx, queueID, offset, page)
		if err != nil {
			return Result{}, err
		}
		if len(subs) == 0 {
			break
		}
		submissionsCount += len(subs)

		for _, sub := range subs {
			for _, a := range assignments {
				if !submissionHasQuestion(sub, a.QuestionID) {
					continue
				}
				buffer = append(buffer, model.Job{
					SubmissionID:   sub.ID,
					SubmissionData: sub.Data,
					QuestionID:     a.QuestionID,
					JudgeID:        a.JudgeID,
					QueueID:        queueID,
					Status:         model.JobStatusPending,
				})
				if len(buffer) >= batch {
					if err := flush(); err != nil {
						return Result{}, err
					}
				}
			}
		}

		if len(subs) < page {
			break
		}
	}

	if err := flush(); err != nil {
		return Result{}, err
	}

	return Result{
		Enqueued:         enqueued,
		SubmissionsCount: submissionsCount,
		AssignmentsCount: len(assignments),
	}, nil
}

// submissionHasQuestion reports whether sub contains questionID either as
// an answer key or as a listed question entry.
func submissionHasQuestion(sub model.Submission, questionID string) bool {
	if _, ok := sub.Data.Answers[questionID]; ok {
		return true
	}
	for _, q := range sub.Data.Questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}
