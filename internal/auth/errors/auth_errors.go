package autherrors

import (
	"net/http"

	"go-parts-gateway/internal/pkg/apperror"
)

var (
	ErrUnauthorized = apperror.New(
		apperror.CodeUnauthorized,
		"Unauthorized access",
		http.StatusUnauthorized,
	)

	ErrInvalidToken = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid authentication token",
		http.StatusUnauthorized,
	)

	ErrTokenExpired = apperror.New(
		apperror.CodeUnauthorized,
		"Authentication token expired",
		http.StatusUnauthorized,
	)

	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"Access forbidden",
		http.StatusForbidden,
	)

	ErrTooManyRequests = apperror.New(
		apperror.CodeTooManyRequests,
		"Too many requests, slow down",
		http.StatusTooManyRequests,
	)
)
