package apperror

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// StatusCoder is implemented by errors that carry an HTTP status from elsewhere,
// such as a failed upstream call.
type StatusCoder interface {
	StatusCode() int
}

func ToHTTP(err error) *HTTPError {
	if err == nil {
		return &HTTPError{
			Status: http.StatusOK,
		}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		status := sc.StatusCode()
		switch {
		case status == http.StatusNotFound:
			return &HTTPError{Status: status, Code: CodeNotFound, Message: "resource not found upstream"}
		case status == http.StatusServiceUnavailable:
			return &HTTPError{Status: status, Code: CodeUnavailable, Message: "upstream unavailable"}
		case status >= 400 && status < 500:
			return &HTTPError{Status: status, Code: CodeInvalidInput, Message: "request rejected upstream", Details: err.Error()}
		default:
			return &HTTPError{Status: http.StatusBadGateway, Code: CodeUpstreamError, Message: "upstream error"}
		}
	}

	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: "internal server error",
	}
}
