package catalog

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

func NewHandler(s Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("catalog.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("catalog.handler")
	}
	return &Handler{service: s, logger: l}
}

// GET /catalog/feed?cursor=&limit=&pages=
func (h *Handler) Feed(c *gin.Context) {
	var q FeedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid feed query", err.Error())
		return
	}

	pages := q.Pages
	if pages < 1 {
		pages = 1
	}
	if pages > MaxFeedPages {
		pages = MaxFeedPages
	}

	limit := clampLimit(q.Limit)
	page, err := NewPager(h.service, q.Cursor, limit).Collect(c.Request.Context(), pages)
	if err != nil {
		h.logger.Warn("feed fetch failed", zap.String("cursor", q.Cursor), zap.Error(err))
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	response.Success(c, http.StatusOK, page.Items, &response.Pagination{
		NextCursor: page.NextCursor,
		Limit:      limit,
		HasMore:    page.NextCursor != "",
	})
}
