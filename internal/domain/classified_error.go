package domain

import "time"

type ErrorCategory string

const (
	CategoryAPI       ErrorCategory = "api"
	CategoryWorkspace ErrorCategory = "workspace"
	CategoryAnalysis  ErrorCategory = "analysis"
	CategoryConfig    ErrorCategory = "config"
	CategoryGeneral   ErrorCategory = "general"
)

// ClassifiedError is the user-facing shape of a failed request.
type ClassifiedError struct {
	Category        ErrorCategory `json:"category"`
	Message         string        `json:"message"`
	ErrorID         string        `json:"errorId"`
	Troubleshooting string        `json:"troubleshooting"`
	Timestamp       time.Time     `json:"timestamp"`
}

func (e ClassifiedError) Error() string {
	return e.Message
}
