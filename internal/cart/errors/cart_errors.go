package carterrors

import (
	"errors"
	"net/http"

	"go-parts-gateway/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidInput = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid cart request",
		http.StatusBadRequest,
	)

	ErrInvalidQty = apperror.New(
		apperror.CodeInvalidInput,
		"Quantity must be between 0 and 999",
		http.StatusBadRequest,
	)

	ErrInvalidItemID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid cart item id",
		http.StatusBadRequest,
	)

	ErrInvalidProductID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid product id",
		http.StatusBadRequest,
	)

	ErrMissingUser = apperror.New(
		apperror.CodeUnauthorized,
		"User not authenticated",
		http.StatusUnauthorized,
	)
)

func MapValidationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return ErrInvalidInput
	}
	for _, fe := range ve {
		switch fe.Field() {
		case "Quantity":
			return ErrInvalidQty
		case "ProductID":
			return ErrInvalidProductID
		}
	}
	return ErrInvalidInput
}
