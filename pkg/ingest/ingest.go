// Package ingest implements bulk submission upload: validation, answer-text
// fingerprinting, and batched persistence.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/judgequeue/judgequeue/pkg/apperrors"
	"github.com/judgequeue/judgequeue/pkg/fingerprint"
	"github.com/judgequeue/judgequeue/pkg/model"
)

// DefaultBatchSize is the number of submissions upserted per store call.
const DefaultBatchSize = 100

// SubmissionStore is the subset of pkg/store.SubmissionStore ingest needs.
type SubmissionStore interface {
	UpsertBatch(ctx context.Context, subs []model.Submission) error
}

// Ingester validates and persists bulk submissions.
type Ingester struct {
	Store     SubmissionStore
	BatchSize int
}

// New builds an Ingester with the default batch size.
func New(store SubmissionStore) *Ingester {
	return &Ingester{Store: store, BatchSize: DefaultBatchSize}
}

// Input is one submission as received over the wire, before fingerprinting.
type Input struct {
	ID             string
	QueueID        string
	LabelingTaskID string
	Questions      []model.Question
	Answers        map[string]interface{}
}

// Result reports how many submissions were stored.
type Result struct {
	Uploaded int
}

// Run validates, fingerprints, and batch-upserts a set of submissions.
// A submission whose answers yield no text is still stored, with no
// fingerprint and HasFingerprint left false.
func (i *Ingester) Run(ctx context.Context, inputs []Input) (Result, error) {
	if len(inputs) == 0 {
		return Result{}, apperrors.NewValidationError("submission batch must not be empty")
	}

	batchSize := i.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var buffer []model.Submission
	uploaded := 0

	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		if err := i.Store.UpsertBatch(ctx, buffer); err != nil {
			return err
		}
		uploaded += len(buffer)
		buffer = buffer[:0]
		return nil
	}

	for _, in := range inputs {
		if err := validate(in); err != nil {
			return Result{}, err
		}

		sub := model.Submission{
			ID:             in.ID,
			QueueID:        in.QueueID,
			LabelingTaskID: in.LabelingTaskID,
			Data:           model.SubmissionData{Questions: in.Questions, Answers: in.Answers},
		}

		text := answerText(in.Answers)
		if text != "" {
			h := fingerprint.Simhash(text)
			sub.AnswerSimhash = h
			sub.SimhashBucket = fingerprint.SimhashBucket(h)
			sub.HasFingerprint = true
		}

		buffer = append(buffer, sub)
		if len(buffer) >= batchSize {
			if err := flush(); err != nil {
				return Result{}, err
			}
		}
	}

	if err := flush(); err != nil {
		return Result{}, err
	}

	return Result{Uploaded: uploaded}, nil
}

func validate(in Input) error {
	if in.ID == "" {
		return apperrors.NewValidationError("submission id is required")
	}
	if in.QueueID == "" {
		return apperrors.NewValidationError("submission %q: queue_id is required", in.ID)
	}
	return nil
}

// answerText builds the span of text simhash runs over: dict answers
// contribute their choice and reasoning fields, scalar answers contribute
// their string form. Keys are sorted for determinism.
func answerText(answers map[string]interface{}) string {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		switch v := answers[k].(type) {
		case map[string]interface{}:
			if choice, ok := v["choice"].(string); ok && choice != "" {
				parts = append(parts, choice)
			}
			if reasoning, ok := v["reasoning"].(string); ok && reasoning != "" {
				parts = append(parts, reasoning)
			}
		case string:
			if v != "" {
				parts = append(parts, v)
			}
		case nil:
		default:
			parts = append(parts, fmt.Sprintf("%v", v))
		}
	}
	return strings.Join(parts, " ")
}
