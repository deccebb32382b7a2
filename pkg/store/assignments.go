package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/judgequeue/judgequeue/pkg/apperrors"
	"github.com/judgequeue/judgequeue/pkg/model"
)

// AssignmentStore persists (queue, question, judge) assignments.
type AssignmentStore struct{ db *sql.DB }

// ReplaceForQueue atomically deletes the queue's existing assignments and
// inserts the replacement set.
func (s *AssignmentStore) ReplaceForQueue(ctx context.Context, queueID string, assignments []model.Assignment) ([]model.Assignment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewStoreError("assignments.replace begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE queue_id = $1`, queueID); err != nil {
		return nil, apperrors.NewStoreError("assignments.replace delete", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO assignments (id, queue_id, question_id, judge_id)
		VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return nil, apperrors.NewStoreError("assignments.replace prepare", err)
	}
	defer stmt.Close()

	saved := make([]model.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		a.QueueID = queueID
		if _, err := stmt.ExecContext(ctx, a.ID, a.QueueID, a.QuestionID, a.JudgeID); err != nil {
			return nil, apperrors.NewStoreError("assignments.replace exec", err)
		}
		saved = append(saved, a)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewStoreError("assignments.replace commit", err)
	}
	return saved, nil
}

// ListForQueue returns every assignment for queueID.
func (s *AssignmentStore) ListForQueue(ctx context.Context, queueID string) ([]model.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, queue_id, question_id, judge_id, created_at
		FROM assignments WHERE queue_id = $1`, queueID)
	if err != nil {
		return nil, apperrors.NewStoreError("assignments.list_for_queue", err)
	}
	defer rows.Close()

	var out []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.ID, &a.QueueID, &a.QuestionID, &a.JudgeID, &a.CreatedAt); err != nil {
			return nil, apperrors.NewStoreError("assignments.list_for_queue scan", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
