// Package apperrors defines the error kinds shared between the worker loop
// and the HTTP shell, so that both classify failures the same way.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by store lookups that find no matching row.
var ErrNotFound = errors.New("resource not found")

// ValidationError signals bad input shape, an empty batch, or an unknown
// filter value. Always surfaced as 400, never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps a backing-store failure. The worker loop treats it as
// transient if its string matches the retry pattern, else it counts as an
// attempt per the job retry policy.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err with the operation name that failed.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// ProviderError wraps a failure from an LLM provider call. Transient is set
// when the stringified error matches the retry pattern (rate limit, timeout,
// 429); ProviderFatal errors count as an attempt and, after MAX_ATTEMPTS,
// fail the job permanently.
type ProviderError struct {
	Provider  string
	Err       error
	Transient bool
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}
func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError classifies err using the same substring rule as
// ShouldRetry and wraps it with the provider name.
func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Err: err, Transient: ShouldRetry(err)}
}

// ShouldRetry reports whether err's string representation matches a
// transient-failure pattern: rate limit, timeout, or HTTP 429. This mirrors
// the source system's substring-based classification; where a provider SDK
// exposes a typed error it should be preferred, but no such SDK available
// here distinguishes retryable failures more precisely than their message.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "rate limit") ||
		strings.Contains(s, "timeout") ||
		strings.Contains(s, "429")
}
