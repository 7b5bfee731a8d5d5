package apperror

import "net/http"

const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeUpstreamError   = "UPSTREAM_ERROR"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
	CodeInternalError   = "INTERNAL_ERROR"
)

// AppError is an error that already knows how it should be rendered over HTTP.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *AppError) Error() string {
	return e.Message
}

func New(code, message string, status int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

var (
	ErrInternal = New(CodeInternalError, "internal server error", http.StatusInternalServerError)
)
