package cart

import (
	"net/http"
	"strconv"

	"go-parts-gateway/internal/pkg/apperror"
	"go-parts-gateway/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(s Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("cart.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("cart.handler")
	}
	return &Handler{service: s, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("cart request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// GET /cart?include_locked=true
func (h *Handler) Detail(c *gin.Context) {
	userID := c.GetString("user_id_validated")
	includeLocked, _ := strconv.ParseBool(c.DefaultQuery("include_locked", "false"))

	res, err := h.service.Detail(c.Request.Context(), userID, includeLocked)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

// GET /cart/summary
func (h *Handler) Summary(c *gin.Context) {
	userID := c.GetString("user_id_validated")

	res, err := h.service.Summary(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

// POST /cart/items
func (h *Handler) AddItem(c *gin.Context) {
	userID := c.GetString("user_id_validated")

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid add item payload", zap.Error(err))
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid request body", err.Error())
		return
	}

	if err := h.service.AddItem(c.Request.Context(), userID, req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, nil, nil)
}

// PUT /cart/items/:itemId
func (h *Handler) UpdateQty(c *gin.Context) {
	userID := c.GetString("user_id_validated")
	itemID := c.Param("itemId")

	var req UpdateQtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid update qty payload", zap.Error(err))
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid request body", err.Error())
		return
	}

	if err := h.service.UpdateQty(c.Request.Context(), userID, itemID, req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, nil, nil)
}

// DELETE /cart/items/:itemId
func (h *Handler) RemoveItem(c *gin.Context) {
	userID := c.GetString("user_id_validated")
	itemID := c.Param("itemId")

	if err := h.service.RemoveItem(c.Request.Context(), userID, itemID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, nil, nil)
}

// DELETE /cart
func (h *Handler) Clear(c *gin.Context) {
	userID := c.GetString("user_id_validated")

	if err := h.service.Clear(c.Request.Context(), userID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, nil, nil)
}
