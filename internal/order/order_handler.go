package order

import (
	"net/http"

	"go-parts-gateway/internal/pkg/apperror"
	"go-parts-gateway/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(svc Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("order.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("order.handler")
	}
	return &Handler{service: svc, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// POST /orders/checkout
func (h *Handler) Checkout(c *gin.Context) {
	userID := c.GetString("user_id_validated")

	h.logger.Debug("http checkout request", zap.String("user_id", userID))

	orders, err := h.service.Checkout(c.Request.Context(), userID)
	if err != nil {
		h.logger.Warn("http checkout failed", zap.String("user_id", userID), zap.Error(err))
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, orders, nil)
}

// GET /orders
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("user_id_validated")

	orders, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("http list orders failed", zap.String("user_id", userID), zap.Error(err))
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, orders, nil)
}

// GET /orders/:id
func (h *Handler) Detail(c *gin.Context) {
	userID := c.GetString("user_id_validated")

	o, err := h.service.Detail(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, o, nil)
}

// POST /orders/:id/messages
func (h *Handler) PostMessage(c *gin.Context) {
	userID := c.GetString("user_id_validated")

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid request body", err.Error())
		return
	}

	author := AuthorForRole(c.GetString("role"))
	msg, err := h.service.PostMessage(c.Request.Context(), userID, c.Param("id"), author, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, msg, nil)
}
