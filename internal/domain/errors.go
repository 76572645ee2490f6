package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSecretNotFound    = errors.New("secret not found")
	ErrCredentialMissing = errors.New("api key not configured")
	ErrCredentialInvalid = errors.New("api key is invalid")
	ErrQuotaExceeded     = errors.New("daily request limit reached")
	ErrTurnInFlight      = errors.New("a request is already in progress for this session")
	ErrSessionClosed     = errors.New("session closed")
)

// WorkspaceError reports a failure to access editor-side files.
type WorkspaceError struct {
	Op   string
	Path string
	Err  error
}

func (e *WorkspaceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *WorkspaceError) Unwrap() error {
	return e.Err
}

// AnalysisError reports subject code or content that cannot be sent for analysis.
type AnalysisError struct {
	Reason string
}

func (e *AnalysisError) Error() string {
	return e.Reason
}

// QuotaError carries the counters observed when a request was rejected.
type QuotaError struct {
	Used  uint64
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s (%d/%d)", ErrQuotaExceeded, e.Used, e.Limit)
}

func (e *QuotaError) Unwrap() error {
	return ErrQuotaExceeded
}
