package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/judgequeue/judgequeue/pkg/apperrors"
)

// liveJobStatusHandler handles GET /diagnostics/live_job_status?queue_id=; it
// streams a job-count snapshot over Server-Sent Events roughly once a second
// until the queue drains or the client disconnects.
func (s *Server) liveJobStatusHandler(c *echo.Context) error {
	queueID := c.QueryParam("queue_id")
	if queueID == "" {
		return mapError(apperrors.NewValidationError("queue_id is required"))
	}

	w := c.Response()
	flusher, ok := w.(http.Flusher)
	if !ok {
		return mapError(fmt.Errorf("streaming unsupported"))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := c.Request().Context()
	snapshots := s.reporter.Stream(ctx, queueID)
	for snap := range snapshots {
		payload, err := json.Marshal(jobStatusResponse{Counts: snap.Counts, Total: snap.Total})
		if err != nil {
			return mapError(err)
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return nil
		}
		flusher.Flush()
	}
	return nil
}
