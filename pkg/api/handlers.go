package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/judgequeue/judgequeue/pkg/apperrors"
	"github.com/judgequeue/judgequeue/pkg/ingest"
	"github.com/judgequeue/judgequeue/pkg/model"
	"github.com/judgequeue/judgequeue/pkg/store"
)

func randomID() string {
	return uuid.NewString()
}

// uploadSubmissionsHandler handles POST /submissions.
func (s *Server) uploadSubmissionsHandler(c *echo.Context) error {
	var body []submissionRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	inputs := make([]ingest.Input, len(body))
	for i, sub := range body {
		inputs[i] = ingest.Input{
			ID:             sub.ID,
			QueueID:        sub.QueueID,
			LabelingTaskID: sub.LabelingTaskID,
			Questions:      sub.Questions,
			Answers:        sub.Answers,
		}
	}

	result, err := s.ingester.Run(c.Request().Context(), inputs)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, uploadResponse{Uploaded: result.Uploaded})
}

// listJudgesHandler handles GET /judges.
func (s *Server) listJudgesHandler(c *echo.Context) error {
	judges, err := s.store.Judges.List(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	out := make([]judgeResponse, len(judges))
	for i, j := range judges {
		out[i] = toJudgeResponse(j)
	}
	return c.JSON(http.StatusOK, out)
}

// getJudgeHandler handles GET /judges/:id.
func (s *Server) getJudgeHandler(c *echo.Context) error {
	j, err := s.store.Judges.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toJudgeResponse(j))
}

// createJudgeHandler handles POST /judges.
func (s *Server) createJudgeHandler(c *echo.Context) error {
	var body judgeRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if body.Name == "" || body.Model == "" {
		return mapError(apperrors.NewValidationError("name and model are required"))
	}

	active := true
	if body.Active != nil {
		active = *body.Active
	}

	j := model.Judge{
		ID:           c.QueryParam("id"),
		Name:         body.Name,
		SystemPrompt: body.SystemPrompt,
		Model:        body.Model,
		Provider:     body.Provider,
		Active:       active,
	}
	if j.ID == "" {
		j.ID = randomID()
	}

	if err := s.store.Judges.Create(c.Request().Context(), j); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toJudgeResponse(j))
}

// updateJudgeHandler handles PUT /judges/:id.
func (s *Server) updateJudgeHandler(c *echo.Context) error {
	id := c.Param("id")
	var body judgeRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	existing, err := s.store.Judges.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}

	if body.Name != "" {
		existing.Name = body.Name
	}
	if body.SystemPrompt != "" {
		existing.SystemPrompt = body.SystemPrompt
	}
	if body.Model != "" {
		existing.Model = body.Model
	}
	if body.Provider != "" {
		existing.Provider = body.Provider
	}
	if body.Active != nil {
		existing.Active = *body.Active
	}

	if err := s.store.Judges.Update(c.Request().Context(), existing); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toJudgeResponse(existing))
}

// deleteJudgeHandler handles DELETE /judges/:id.
func (s *Server) deleteJudgeHandler(c *echo.Context) error {
	if err := s.store.Judges.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// listQuestionsHandler handles GET /queue/questions?queue_id=.
func (s *Server) listQuestionsHandler(c *echo.Context) error {
	queueID := c.QueryParam("queue_id")
	if queueID == "" {
		return mapError(apperrors.NewValidationError("queue_id is required"))
	}
	ids, err := s.store.Submissions.ListQuestionIDs(c.Request().Context(), queueID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, ids)
}

// listAssignmentsHandler handles GET /queue/assignments?queue_id=.
func (s *Server) listAssignmentsHandler(c *echo.Context) error {
	queueID := c.QueryParam("queue_id")
	if queueID == "" {
		return mapError(apperrors.NewValidationError("queue_id is required"))
	}
	assignments, err := s.store.Assignments.ListForQueue(c.Request().Context(), queueID)
	if err != nil {
		return mapError(err)
	}
	out := make([]assignmentResponse, len(assignments))
	for i, a := range assignments {
		out[i] = toAssignmentResponse(a)
	}
	return c.JSON(http.StatusOK, out)
}

// saveAssignmentsHandler handles POST /queue/assignments; it atomically
// replaces the queue's assignment set.
func (s *Server) saveAssignmentsHandler(c *echo.Context) error {
	var body saveAssignmentsRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if body.QueueID == "" {
		return mapError(apperrors.NewValidationError("queue_id is required"))
	}

	assignments := make([]model.Assignment, len(body.Assignments))
	for i, a := range body.Assignments {
		assignments[i] = model.Assignment{QuestionID: a.QuestionID, JudgeID: a.JudgeID}
	}

	saved, err := s.store.Assignments.ReplaceForQueue(c.Request().Context(), body.QueueID, assignments)
	if err != nil {
		return mapError(err)
	}
	out := make([]assignmentResponse, len(saved))
	for i, a := range saved {
		out[i] = toAssignmentResponse(a)
	}
	return c.JSON(http.StatusOK, out)
}

// runQueueHandler handles POST /queue/run?queue_id=.
func (s *Server) runQueueHandler(c *echo.Context) error {
	queueID := c.QueryParam("queue_id")
	if queueID == "" {
		return mapError(apperrors.NewValidationError("queue_id is required"))
	}

	result, err := s.materializer.Run(c.Request().Context(), queueID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, runResponse{
		Enqueued:         result.Enqueued,
		SubmissionsCount: result.SubmissionsCount,
		AssignmentsCount: result.AssignmentsCount,
	})
}

// listEvaluationsHandler handles GET /evaluations.
func (s *Server) listEvaluationsHandler(c *echo.Context) error {
	filters := store.ListFilters{
		QueueID:    c.QueryParam("queue_id"),
		JudgeID:    c.QueryParam("judge_id"),
		QuestionID: c.QueryParam("question_id"),
		Verdict:    c.QueryParam("verdict"),
		Page:       1,
		Limit:      s.evaluationsPageLimit,
	}
	if v := c.QueryParam("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			filters.Page = p
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			filters.Limit = l
		}
	}

	evals, total, err := s.store.Evaluations.List(c.Request().Context(), filters)
	if err != nil {
		return mapError(err)
	}
	out := make([]evaluationResponse, len(evals))
	for i, e := range evals {
		out[i] = toEvaluationResponse(e)
	}
	return c.JSON(http.StatusOK, evaluationsListResponse{
		Evaluations: out,
		Total:       total,
		Page:        filters.Page,
		Limit:       filters.Limit,
	})
}

// jobStatusHandler handles GET /diagnostics/job_status?queue_id=.
func (s *Server) jobStatusHandler(c *echo.Context) error {
	queueID := c.QueryParam("queue_id")
	if queueID == "" {
		return mapError(apperrors.NewValidationError("queue_id is required"))
	}
	snap, err := s.reporter.Status(c.Request().Context(), queueID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, jobStatusResponse{Counts: snap.Counts, Total: snap.Total})
}

// summaryHandler handles GET /diagnostics/summary: job counts aggregated
// across every queue, unlike job_status which scopes to one queue_id.
func (s *Server) summaryHandler(c *echo.Context) error {
	summary, err := s.reporter.Summary(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, summaryResponse{Counts: summary.Counts, Total: summary.Total, QueueCount: summary.QueueCount})
}
