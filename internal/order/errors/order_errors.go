package ordererrors

import (
	"net/http"

	"go-parts-gateway/internal/pkg/apperror"
)

var (
	ErrCartEmpty = apperror.New(
		apperror.CodeInvalidInput,
		"Cart is empty",
		http.StatusBadRequest,
	)

	ErrNothingToOrder = apperror.New(
		apperror.CodeConflict,
		"None of the cart items can be ordered anymore",
		http.StatusConflict,
	)

	ErrCheckoutConflict = apperror.New(
		apperror.CodeConflict,
		"Checkout already in progress, try again",
		http.StatusConflict,
	)

	ErrOrderFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to create orders",
		http.StatusInternalServerError,
	)

	ErrOrderNotFound = apperror.New(
		apperror.CodeNotFound,
		"Order not found",
		http.StatusNotFound,
	)

	ErrInvalidOrderID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid order id",
		http.StatusBadRequest,
	)

	ErrInvalidAuthor = apperror.New(
		apperror.CodeInvalidInput,
		"Author must be buyer or seller",
		http.StatusBadRequest,
	)

	ErrInvalidMessage = apperror.New(
		apperror.CodeInvalidInput,
		"Message text must be between 1 and 2000 characters",
		http.StatusBadRequest,
	)

	ErrMissingUser = apperror.New(
		apperror.CodeUnauthorized,
		"User not authenticated",
		http.StatusUnauthorized,
	)
)
