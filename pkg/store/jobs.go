package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/judgequeue/judgequeue/pkg/apperrors"
	"github.com/judgequeue/judgequeue/pkg/model"
)

// JobStore persists the job queue.
type JobStore struct{ db *sql.DB }

// InsertBatch inserts pending jobs, one INSERT per job inside a single
// transaction per batch. Each job
// carries a snapshot of its submission's data so execution is independent
// of later submission edits.
func (s *JobStore) InsertBatch(ctx context.Context, jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("jobs.insert_batch begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO judge_jobs (submission_id, submission_data, question_id, judge_id, queue_id, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')`)
	if err != nil {
		return apperrors.NewStoreError("jobs.insert_batch prepare", err)
	}
	defer stmt.Close()

	for _, j := range jobs {
		data, err := json.Marshal(j.SubmissionData)
		if err != nil {
			return apperrors.NewStoreError("jobs.insert_batch marshal", err)
		}
		if _, err := stmt.ExecContext(ctx, j.SubmissionID, data, j.QuestionID, j.JudgeID, j.QueueID); err != nil {
			return apperrors.NewStoreError("jobs.insert_batch exec", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreError("jobs.insert_batch commit", err)
	}
	return nil
}

// Claim atomically selects up to limit pending jobs and marks them
// running, in a single transaction using SELECT ... FOR UPDATE SKIP LOCKED
// so concurrent workers never double-process the same job.
func (s *JobStore) Claim(ctx context.Context, limit int) ([]model.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewStoreError("jobs.claim begin", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, submission_id, submission_data, question_id, judge_id, queue_id, status, attempts, created_at, updated_at
		FROM judge_jobs
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, apperrors.NewStoreError("jobs.claim select", err)
	}

	var jobs []model.Job
	for rows.Next() {
		var j model.Job
		var raw []byte
		if err := rows.Scan(&j.ID, &j.SubmissionID, &raw, &j.QuestionID, &j.JudgeID, &j.QueueID, &j.Status, &j.Attempts, &j.CreatedAt, &j.UpdatedAt); err != nil {
			rows.Close()
			return nil, apperrors.NewStoreError("jobs.claim scan", err)
		}
		if err := json.Unmarshal(raw, &j.SubmissionData); err != nil {
			rows.Close()
			return nil, apperrors.NewStoreError("jobs.claim decode", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, apperrors.NewStoreError("jobs.claim rows", err)
	}
	rows.Close()

	if len(jobs) == 0 {
		return nil, tx.Commit()
	}

	ids := make([]string, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}

	updateStmt, err := tx.PrepareContext(ctx, `
		UPDATE judge_jobs SET status = 'running', updated_at = now() WHERE id = $1`)
	if err != nil {
		return nil, apperrors.NewStoreError("jobs.claim prepare update", err)
	}
	defer updateStmt.Close()

	for i, id := range ids {
		if _, err := updateStmt.ExecContext(ctx, id); err != nil {
			return nil, apperrors.NewStoreError("jobs.claim update", err)
		}
		jobs[i].Status = model.JobStatusRunning
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewStoreError("jobs.claim commit", err)
	}
	return jobs, nil
}

// MarkDone transitions a job to done.
func (s *JobStore) MarkDone(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE judge_jobs SET status = 'done', updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewStoreError("jobs.mark_done", err)
	}
	return nil
}

// RecordFailure increments attempts and transitions the job to failed (if
// attempts has reached model.MaxAttempts) or back to pending for a retry,
// recording the error string either way.
func (s *JobStore) RecordFailure(ctx context.Context, id string, lastErr string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE judge_jobs SET
			attempts = attempts + 1,
			last_error = $2,
			status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE 'pending' END,
			updated_at = now()
		WHERE id = $1`, id, lastErr, model.MaxAttempts)
	if err != nil {
		return apperrors.NewStoreError("jobs.record_failure", err)
	}
	return nil
}

// CountByQueue returns the per-status job counts for queueID.
func (s *JobStore) CountByQueue(ctx context.Context, queueID string) (model.JobCounts, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, count(*) FROM judge_jobs WHERE queue_id = $1 GROUP BY status`, queueID)
	if err != nil {
		return model.JobCounts{}, apperrors.NewStoreError("jobs.count_by_queue", err)
	}
	defer rows.Close()

	var counts model.JobCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return model.JobCounts{}, apperrors.NewStoreError("jobs.count_by_queue scan", err)
		}
		switch status {
		case model.JobStatusPending:
			counts.Pending = n
		case model.JobStatusRunning:
			counts.Running = n
		case model.JobStatusDone:
			counts.Done = n
		case model.JobStatusFailed:
			counts.Failed = n
		}
	}
	return counts, rows.Err()
}

// CountAll returns the per-status job counts summed across every queue,
// plus the number of distinct queues that have at least one job.
func (s *JobStore) CountAll(ctx context.Context) (model.JobCounts, int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, count(*) FROM judge_jobs GROUP BY status`)
	if err != nil {
		return model.JobCounts{}, 0, apperrors.NewStoreError("jobs.count_all", err)
	}

	var counts model.JobCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return model.JobCounts{}, 0, apperrors.NewStoreError("jobs.count_all scan", err)
		}
		switch status {
		case model.JobStatusPending:
			counts.Pending = n
		case model.JobStatusRunning:
			counts.Running = n
		case model.JobStatusDone:
			counts.Done = n
		case model.JobStatusFailed:
			counts.Failed = n
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return model.JobCounts{}, 0, apperrors.NewStoreError("jobs.count_all rows", err)
	}
	rows.Close()

	var queueCount int
	if err := s.db.QueryRowContext(ctx, `SELECT count(DISTINCT queue_id) FROM judge_jobs`).Scan(&queueCount); err != nil {
		return model.JobCounts{}, 0, apperrors.NewStoreError("jobs.count_all queue_count", err)
	}
	return counts, queueCount, nil
}

// ReapOrphans resets jobs stuck in running for longer than threshold back
// to pending, recovering work from workers that crashed mid-job.
func (s *JobStore) ReapOrphans(ctx context.Context, thresholdSeconds int) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE judge_jobs
		SET status = 'pending', updated_at = now()
		WHERE status = 'running' AND updated_at < now() - make_interval(secs => $1)`, thresholdSeconds)
	if err != nil {
		return 0, apperrors.NewStoreError("jobs.reap_orphans", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.NewStoreError("jobs.reap_orphans rows_affected", err)
	}
	return int(n), nil
}
