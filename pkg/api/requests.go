package api

import "github.com/judgequeue/judgequeue/pkg/model"

// submissionRequest is the wire shape of one bulk-ingested submission.
type submissionRequest struct {
	ID             string                 `json:"id"`
	QueueID        string                 `json:"queue_id"`
	LabelingTaskID string                 `json:"labeling_task_id"`
	Questions      []model.Question       `json:"questions"`
	Answers        map[string]interface{} `json:"answers"`
}

// judgeRequest is the wire shape for judge create/update.
type judgeRequest struct {
	Name         string `json:"name"`
	SystemPrompt string `json:"system_prompt"`
	Model        string `json:"model"`
	Provider     string `json:"provider"`
	Active       *bool  `json:"active"`
}

// assignmentRequest is one entry of a save-assignments request body.
type assignmentRequest struct {
	QuestionID string `json:"question_id"`
	JudgeID    string `json:"judge_id"`
}

// saveAssignmentsRequest is the full body of POST /queue/assignments.
type saveAssignmentsRequest struct {
	QueueID     string              `json:"queue_id"`
	Assignments []assignmentRequest `json:"assignments"`
}
