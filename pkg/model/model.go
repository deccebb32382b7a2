// Package model holds the shared domain types for the judge evaluation
// pipeline: submissions, judges, assignments, jobs, and evaluations.
package model

import (
	"encoding/json"
	"time"
)

// Job status values. A job moves pending -> running -> {done, pending, failed}.
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// Verdict values produced by the judge runner.
const (
	VerdictPass         = "pass"
	VerdictFail         = "fail"
	VerdictInconclusive = "inconclusive"
)

// MaxAttempts bounds the number of times a job may be claimed and fail
// before it is marked permanently failed.
const MaxAttempts = 3

// Submission is an immutable labeled task submission. Data holds the raw
// questions/answers payload exactly as ingested; answer fingerprinting is
// computed once at ingest time.
type Submission struct {
	ID              string
	QueueID         string
	LabelingTaskID  string
	Data            SubmissionData
	AnswerSimhash   int64
	SimhashBucket   int32
	HasFingerprint  bool
	CreatedAt       time.Time
}

// SubmissionData is the decoded shape of a submission's opaque data blob.
type SubmissionData struct {
	Questions []Question             `json:"questions"`
	Answers   map[string]interface{} `json:"answers"`
}

// Question accepts any of the three spellings the source system used for
// its text field, plus the "nested under data" shape some callers send:
// {"data": {"id": ..., "questionText": ...}} alongside the flat
// {"id": ..., "questionText": ...} shape. UnmarshalJSON unwraps the former
// so every other call site can just read q.ID.
type Question struct {
	ID            string `json:"id"`
	Text          string `json:"text,omitempty"`
	QuestionText  string `json:"questionText,omitempty"`
	QuestionText2 string `json:"question_text,omitempty"`
}

// UnmarshalJSON unwraps a {"data": {...}} envelope before decoding the
// question's fields, so callers never need to special-case the nested shape.
func (q *Question) UnmarshalJSON(raw []byte) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		raw = envelope.Data
	}

	type plain Question
	var p plain
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	*q = Question(p)
	return nil
}

// ResolvedText returns the first non-empty spelling of the question's text.
func (q Question) ResolvedText() string {
	switch {
	case q.QuestionText != "":
		return q.QuestionText
	case q.QuestionText2 != "":
		return q.QuestionText2
	case q.Text != "":
		return q.Text
	default:
		return q.ID
	}
}

// Judge is a configured LLM evaluator. Provider is an optional override of
// the provider inferred from Model; see pkg/providers.ResolveProvider.
type Judge struct {
	ID           string
	Name         string
	SystemPrompt string
	Model        string
	Provider     string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Assignment declares that Judge must evaluate Question for every
// submission in Queue.
type Assignment struct {
	ID         string
	QueueID    string
	QuestionID string
	JudgeID    string
	CreatedAt  time.Time
}

// Job is one scheduled (submission, question, judge) evaluation.
type Job struct {
	ID              string
	SubmissionID    string
	SubmissionData  SubmissionData
	QuestionID      string
	JudgeID         string
	QueueID         string
	Status          string
	Attempts        int
	LastError       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Evaluation is the durable record of a judge's verdict for one
// (submission, question) pair.
type Evaluation struct {
	SubmissionID     string
	QuestionID       string
	JudgeID          string
	QueueID          string
	Verdict          string
	Reasoning        string
	ReasoningSimhash int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// JobCounts is the per-queue status breakdown returned by the status
// reporter.
type JobCounts struct {
	Pending int
	Running int
	Done    int
	Failed  int
}

// Total sums all counted states.
func (c JobCounts) Total() int {
	return c.Pending + c.Running + c.Done + c.Failed
}
