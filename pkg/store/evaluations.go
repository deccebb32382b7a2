package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/judgequeue/judgequeue/pkg/apperrors"
	"github.com/judgequeue/judgequeue/pkg/model"
)

// EvaluationStore persists evaluation results.
type EvaluationStore struct{ db *sql.DB }

// Upsert looks up the existing row by (submission_id, question_id,
// judge_id); inserts if absent, otherwise updates only the fields that
// differ. A no-op write (everything already matches) changes nothing.
func (s *EvaluationStore) Upsert(ctx context.Context, e model.Evaluation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("evaluations.upsert begin", err)
	}
	defer tx.Rollback()

	var existing model.Evaluation
	err = tx.QueryRowContext(ctx, `
		SELECT submission_id, question_id, judge_id, queue_id, verdict, reasoning, reasoning_simhash
		FROM evaluations WHERE submission_id = $1 AND question_id = $2 AND judge_id = $3
		FOR UPDATE`, e.SubmissionID, e.QuestionID, e.JudgeID).
		Scan(&existing.SubmissionID, &existing.QuestionID, &existing.JudgeID, &existing.QueueID,
			&existing.Verdict, &existing.Reasoning, &existing.ReasoningSimhash)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err := tx.ExecContext(ctx, `
			INSERT INTO evaluations (submission_id, question_id, judge_id, queue_id, verdict, reasoning, reasoning_simhash)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.SubmissionID, e.QuestionID, e.JudgeID, e.QueueID, e.Verdict, e.Reasoning, e.ReasoningSimhash)
		if err != nil {
			return apperrors.NewStoreError("evaluations.upsert insert", err)
		}
		return tx.Commit()

	case err != nil:
		return apperrors.NewStoreError("evaluations.upsert select", err)
	}

	changed := existing.Verdict != e.Verdict ||
		existing.Reasoning != e.Reasoning ||
		existing.ReasoningSimhash != e.ReasoningSimhash ||
		(e.QueueID != "" && existing.QueueID != e.QueueID)
	if !changed {
		return tx.Commit()
	}

	queueID := existing.QueueID
	if e.QueueID != "" {
		queueID = e.QueueID
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE evaluations SET verdict = $4, reasoning = $5, reasoning_simhash = $6, queue_id = $7, updated_at = now()
		WHERE submission_id = $1 AND question_id = $2 AND judge_id = $3`,
		e.SubmissionID, e.QuestionID, e.JudgeID, e.Verdict, e.Reasoning, e.ReasoningSimhash, queueID)
	if err != nil {
		return apperrors.NewStoreError("evaluations.upsert update", err)
	}
	return tx.Commit()
}

// ListFilters scopes a paginated evaluation listing.
type ListFilters struct {
	QueueID    string
	JudgeID    string
	QuestionID string
	Verdict    string
	Page       int
	Limit      int
}

// List returns a page of evaluations matching filters along with the total
// matching row count.
func (s *EvaluationStore) List(ctx context.Context, f ListFilters) ([]model.Evaluation, int, error) {
	where := "WHERE 1=1"
	var args []interface{}
	add := func(clause string, val interface{}) {
		args = append(args, val)
		where += " AND " + clause + " = $" + strconv.Itoa(len(args))
	}
	if f.QueueID != "" {
		add("queue_id", f.QueueID)
	}
	if f.JudgeID != "" {
		add("judge_id", f.JudgeID)
	}
	if f.QuestionID != "" {
		add("question_id", f.QuestionID)
	}
	if f.Verdict != "" {
		add("verdict", f.Verdict)
	}

	var total int
	countQuery := "SELECT count(*) FROM evaluations " + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewStoreError("evaluations.list count", err)
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	offset := (page - 1) * limit

	pagedArgs := append(append([]interface{}{}, args...), limit, offset)
	query := `SELECT submission_id, question_id, judge_id, queue_id, verdict, reasoning, reasoning_simhash, created_at, updated_at
		FROM evaluations ` + where + ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(pagedArgs)-1) + ` OFFSET $` + strconv.Itoa(len(pagedArgs))

	rows, err := s.db.QueryContext(ctx, query, pagedArgs...)
	if err != nil {
		return nil, 0, apperrors.NewStoreError("evaluations.list select", err)
	}
	defer rows.Close()

	var out []model.Evaluation
	for rows.Next() {
		var e model.Evaluation
		var updatedAt sql.NullTime
		if err := rows.Scan(&e.SubmissionID, &e.QuestionID, &e.JudgeID, &e.QueueID, &e.Verdict, &e.Reasoning, &e.ReasoningSimhash, &e.CreatedAt, &updatedAt); err != nil {
			return nil, 0, apperrors.NewStoreError("evaluations.list scan", err)
		}
		if updatedAt.Valid {
			e.UpdatedAt = updatedAt.Time
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

