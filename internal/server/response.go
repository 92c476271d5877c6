package server

import "time"

// APIResponse is the standard success envelope every JSON route returns.
type APIResponse struct {
	Data any          `json:"data"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard error envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes used across handlers.
const (
	ErrCodeInvalidRequest      = "invalid_request"
	ErrCodeUnauthorized        = "unauthorized"
	ErrCodeForbidden           = "forbidden"
	ErrCodeNotFound            = "not_found"
	ErrCodeInsufficientOracles = "insufficient_oracles"
	ErrCodeTooFewAssessments   = "too_few_assessments"
	ErrCodeConflict            = "conflict"
	ErrCodeInternalError       = "internal_error"
)
