package api

import (
	"time"

	"github.com/judgequeue/judgequeue/pkg/database"
	"github.com/judgequeue/judgequeue/pkg/model"
	"github.com/judgequeue/judgequeue/pkg/queue"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string                 `json:"status"`
	Database   *database.HealthStatus `json:"database"`
	WorkerPool queue.Health           `json:"worker_pool,omitempty"`
}

// uploadResponse is the body of POST /submissions.
type uploadResponse struct {
	Uploaded int `json:"uploaded"`
}

// judgeResponse is the wire shape of a judge.
type judgeResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SystemPrompt string    `json:"system_prompt"`
	Model        string    `json:"model"`
	Provider     string    `json:"provider"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toJudgeResponse(j model.Judge) judgeResponse {
	return judgeResponse{
		ID:           j.ID,
		Name:         j.Name,
		SystemPrompt: j.SystemPrompt,
		Model:        j.Model,
		Provider:     j.Provider,
		Active:       j.Active,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}

// assignmentResponse is the wire shape of an assignment.
type assignmentResponse struct {
	ID         string `json:"id"`
	QueueID    string `json:"queue_id"`
	QuestionID string `json:"question_id"`
	JudgeID    string `json:"judge_id"`
}

func toAssignmentResponse(a model.Assignment) assignmentResponse {
	return assignmentResponse{ID: a.ID, QueueID: a.QueueID, QuestionID: a.QuestionID, JudgeID: a.JudgeID}
}

// runResponse is the body of POST /queue/run.
type runResponse struct {
	Enqueued         int `json:"enqueued"`
	SubmissionsCount int `json:"submissions_count"`
	AssignmentsCount int `json:"assignments_count"`
}

// evaluationResponse is the wire shape of one evaluation.
type evaluationResponse struct {
	SubmissionID string    `json:"submission_id"`
	QuestionID   string    `json:"question_id"`
	JudgeID      string    `json:"judge_id"`
	QueueID      string    `json:"queue_id"`
	Verdict      string    `json:"verdict"`
	Reasoning    string    `json:"reasoning"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toEvaluationResponse(e model.Evaluation) evaluationResponse {
	return evaluationResponse{
		SubmissionID: e.SubmissionID,
		QuestionID:   e.QuestionID,
		JudgeID:      e.JudgeID,
		QueueID:      e.QueueID,
		Verdict:      e.Verdict,
		Reasoning:    e.Reasoning,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// evaluationsListResponse is the body of GET /evaluations.
type evaluationsListResponse struct {
	Evaluations []evaluationResponse `json:"evaluations"`
	Total       int                  `json:"total"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
}

// jobStatusResponse is the body of GET /diagnostics/job_status.
type jobStatusResponse struct {
	Counts model.JobCounts `json:"counts"`
	Total  int             `json:"total"`
}

// summaryResponse is the body of GET /diagnostics/summary: job counts
// aggregated across every queue, plus how many distinct queues have jobs.
type summaryResponse struct {
	Counts     model.JobCounts `json:"counts"`
	Total      int             `json:"total"`
	QueueCount int             `json:"queue_count"`
}
