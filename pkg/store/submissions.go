package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/judgequeue/judgequeue/pkg/apperrors"
	"github.com/judgequeue/judgequeue/pkg/model"
)

// SubmissionStore persists submissions.
type SubmissionStore struct{ db *sql.DB }

// UpsertBatch inserts or replaces submissions keyed by id, one upsert per
// submission inside a single transaction per batch.
func (s *SubmissionStore) UpsertBatch(ctx context.Context, subs []model.Submission) error {
	if len(subs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("submissions.upsert_batch begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO submissions (id, queue_id, labeling_task_id, data, answer_simhash, simhash_bucket)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			queue_id = EXCLUDED.queue_id,
			labeling_task_id = EXCLUDED.labeling_task_id,
			data = EXCLUDED.data,
			answer_simhash = EXCLUDED.answer_simhash,
			simhash_bucket = EXCLUDED.simhash_bucket`)
	if err != nil {
		return apperrors.NewStoreError("submissions.upsert_batch prepare", err)
	}
	defer stmt.Close()

	for _, sub := range subs {
		data, err := json.Marshal(sub.Data)
		if err != nil {
			return apperrors.NewStoreError("submissions.upsert_batch marshal", err)
		}

		var simhash, bucket interface{}
		if sub.HasFingerprint {
			simhash, bucket = sub.AnswerSimhash, sub.SimhashBucket
		}

		if _, err := stmt.ExecContext(ctx, sub.ID, sub.QueueID, sub.LabelingTaskID, data, simhash, bucket); err != nil {
			return apperrors.NewStoreError("submissions.upsert_batch exec", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreError("submissions.upsert_batch commit", err)
	}
	return nil
}

// ListQuestionIDs returns the union of question ids referenced across every
// submission in queueID.
func (s *SubmissionStore) ListQuestionIDs(ctx context.Context, queueID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM submissions WHERE queue_id = $1`, queueID)
	if err != nil {
		return nil, apperrors.NewStoreError("submissions.list_question_ids", err)
	}
	defer rows.Close()

	seen := map[string]bool{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, apperrors.NewStoreError("submissions.list_question_ids scan", err)
		}
		ids, err := questionIDsFromSubmissionData(raw)
		if err != nil {
			continue
		}
		for _, id := range ids {
			seen[id] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("submissions.list_question_ids rows", err)
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids, nil
}

// questionIDsFromSubmissionData decodes a submission's stored data blob and
// returns the ids of its listed questions, honoring model.Question's
// nested-under-"data" decode shape.
func questionIDsFromSubmissionData(raw []byte) ([]string, error) {
	var data model.SubmissionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(data.Questions))
	for _, q := range data.Questions {
		ids = append(ids, q.ID)
	}
	return ids, nil
}

// Count returns the number of submissions in queueID.
func (s *SubmissionStore) Count(ctx context.Context, queueID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM submissions WHERE queue_id = $1`, queueID).Scan(&count)
	if err != nil {
		return 0, apperrors.NewStoreError("submissions.count", err)
	}
	return count, nil
}

// ListPage returns up to limit submissions in queueID starting at offset,
// used by the job materializer to page through large queues.
func (s *SubmissionStore) ListPage(ctx context.Context, queueID string, offset, limit int) ([]model.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data FROM submissions
		WHERE queue_id = $1
		ORDER BY id
		OFFSET $2 LIMIT $3`, queueID, offset, limit)
	if err != nil {
		return nil, apperrors.NewStoreError("submissions.list_page", err)
	}
	defer rows.Close()

	var out []model.Submission
	for rows.Next() {
		var sub model.Submission
		var raw []byte
		if err := rows.Scan(&sub.ID, &raw); err != nil {
			return nil, apperrors.NewStoreError("submissions.list_page scan", err)
		}
		if err := json.Unmarshal(raw, &sub.Data); err != nil {
			return nil, fmt.Errorf("submissions.list_page: decode data for %s: %w", sub.ID, err)
		}
		sub.QueueID = queueID
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("submissions.list_page rows", err)
	}
	return out, nil
}
