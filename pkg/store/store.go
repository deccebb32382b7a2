// Package store implements the typed persistence operations the rest of
// the pipeline depends on, directly against PostgreSQL via database/sql and
// the pgx driver. There is no generated ORM layer: the abstract
// list/count/insert/update/delete/upsert/claim contract is realized as
// hand-written SQL per entity, one repository struct each.
package store

import "database/sql"

// Store groups the per-entity repositories over a shared connection pool.
type Store struct {
	DB *sql.DB

	Submissions *SubmissionStore
	Judges      *JudgeStore
	Assignments *AssignmentStore
	Jobs        *JobStore
	Evaluations *EvaluationStore
}

// New builds a Store backed by db.
func New(db *sql.DB) *Store {
	return &Store{
		DB:          db,
		Submissions: &SubmissionStore{db: db},
		Judges:      &JudgeStore{db: db},
		Assignments: &AssignmentStore{db: db},
		Jobs:        &JobStore{db: db},
		Evaluations: &EvaluationStore{db: db},
	}
}
