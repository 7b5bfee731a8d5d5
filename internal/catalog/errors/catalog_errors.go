package catalogerrors

import (
	"net/http"

	"go-parts-gateway/internal/pkg/apperror"
)

var (
	ErrProductNotFound = apperror.New(
		apperror.CodeNotFound,
		"Product not found",
		http.StatusNotFound,
	)

	ErrInvalidProductID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid product id",
		http.StatusBadRequest,
	)

	ErrInvalidQuery = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid feed query",
		http.StatusBadRequest,
	)
)
