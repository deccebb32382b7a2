package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/judgequeue/judgequeue/pkg/apperrors"
	"github.com/judgequeue/judgequeue/pkg/model"
)

// JudgeStore persists judge configuration.
type JudgeStore struct{ db *sql.DB }

// Create inserts a new judge.
func (s *JudgeStore) Create(ctx context.Context, j model.Judge) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO judges (id, name, system_prompt, model, provider, active)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		j.ID, j.Name, j.SystemPrompt, j.Model, j.Provider, j.Active)
	if err != nil {
		return apperrors.NewStoreError("judges.create", err)
	}
	return nil
}

// Get returns a single judge by id.
func (s *JudgeStore) Get(ctx context.Context, id string) (model.Judge, error) {
	var j model.Judge
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, system_prompt, model, provider, active, created_at, updated_at
		FROM judges WHERE id = $1`, id).
		Scan(&j.ID, &j.Name, &j.SystemPrompt, &j.Model, &j.Provider, &j.Active, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Judge{}, apperrors.ErrNotFound
	}
	if err != nil {
		return model.Judge{}, apperrors.NewStoreError("judges.get", err)
	}
	return j, nil
}

// List returns every configured judge.
func (s *JudgeStore) List(ctx context.Context) ([]model.Judge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, system_prompt, model, provider, active, created_at, updated_at
		FROM judges ORDER BY created_at`)
	if err != nil {
		return nil, apperrors.NewStoreError("judges.list", err)
	}
	defer rows.Close()

	var out []model.Judge
	for rows.Next() {
		var j model.Judge
		if err := rows.Scan(&j.ID, &j.Name, &j.SystemPrompt, &j.Model, &j.Provider, &j.Active, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, apperrors.NewStoreError("judges.list scan", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Update overwrites an existing judge's mutable fields.
func (s *JudgeStore) Update(ctx context.Context, j model.Judge) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE judges SET name = $2, system_prompt = $3, model = $4, provider = $5, active = $6, updated_at = now()
		WHERE id = $1`,
		j.ID, j.Name, j.SystemPrompt, j.Model, j.Provider, j.Active)
	if err != nil {
		return apperrors.NewStoreError("judges.update", err)
	}
	return checkAffected(res, "judges.update")
}

// Delete removes a judge by id.
func (s *JudgeStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM judges WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewStoreError("judges.delete", err)
	}
	return checkAffected(res, "judges.delete")
}

// GetByIDs loads the judges with the given ids into an id-keyed map. The
// worker loop's periodic refresh uses Catalog, not this method.
func (s *JudgeStore) GetByIDs(ctx context.Context, ids []string) (map[string]model.Judge, error) {
	catalog := map[string]model.Judge{}
	if len(ids) == 0 {
		return catalog, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, system_prompt, model, provider, active, created_at, updated_at
		FROM judges WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, apperrors.NewStoreError("judges.get_by_ids", err)
	}
	defer rows.Close()

	for rows.Next() {
		var j model.Judge
		if err := rows.Scan(&j.ID, &j.Name, &j.SystemPrompt, &j.Model, &j.Provider, &j.Active, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, apperrors.NewStoreError("judges.get_by_ids scan", err)
		}
		catalog[j.ID] = j
	}
	return catalog, rows.Err()
}

// Catalog loads every judge into an id-keyed map, used by the worker loop's
// periodic refresh.
func (s *JudgeStore) Catalog(ctx context.Context) (map[string]model.Judge, error) {
	judges, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]model.Judge, len(judges))
	for _, j := range judges {
		catalog[j.ID] = j
	}
	return catalog, nil
}

func checkAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewStoreError(op, err)
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
