package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"

	"github.com/judgequeue/judgequeue/pkg/apperrors"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		expectCode int
		expectMsg  string
	}{
		{
			name:       "validation error maps to 400",
			err:        apperrors.NewValidationError("missing field"),
			expectCode: http.StatusBadRequest,
			expectMsg:  "missing field",
		},
		{
			name:       "not found maps to 404",
			err:        fmt.Errorf("wrapped: %w", apperrors.ErrNotFound),
			expectCode: http.StatusNotFound,
			expectMsg:  "resource not found",
		},
		{
			name:       "transient provider error maps to 504",
			err:        apperrors.NewProviderError("openai", errors.New("rate limit exceeded")),
			expectCode: http.StatusGatewayTimeout,
		},
		{
			name:       "fatal provider error maps to 502",
			err:        apperrors.NewProviderError("openai", errors.New("auth failed")),
			expectCode: http.StatusBadGateway,
		},
		{
			name:       "store error maps to 500",
			err:        apperrors.NewStoreError("jobs.claim", errors.New("connection refused")),
			expectCode: http.StatusInternalServerError,
		},
		{
			name:       "unknown error maps to 500",
			err:        fmt.Errorf("something unexpected happened"),
			expectCode: http.StatusInternalServerError,
			expectMsg:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := mapError(tt.err)
			assert.IsType(t, &echo.HTTPError{}, he)
			assert.Equal(t, tt.expectCode, he.Code)
			if tt.expectMsg != "" {
				assert.Contains(t, he.Error(), tt.expectMsg)
			}
		})
	}
}
