// Package evalwriter exposes the evaluation upsert boundary the worker
// loop writes through, independent of the underlying store implementation.
package evalwriter

import (
	"context"

	"github.com/judgequeue/judgequeue/pkg/model"
)

// Upserter is satisfied by pkg/store.EvaluationStore.
type Upserter interface {
	Upsert(ctx context.Context, e model.Evaluation) error
}

// Writer upserts evaluations produced by the judge runner.
type Writer struct {
	store Upserter
}

// New builds a Writer backed by store.
func New(store Upserter) *Writer {
	return &Writer{store: store}
}

// Write persists a single evaluation, relying on the store's
// look-up/diff/update-or-insert semantics for idempotency.
func (w *Writer) Write(ctx context.Context, eval model.Evaluation) error {
	return w.store.Upsert(ctx, eval)
}
