package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

type Pagination struct {
	NextCursor string `json:"nextCursor,omitempty"`
	Limit      int    `json:"limit"`
	HasMore    bool   `json:"hasMore"`
}

type APIResponse struct {
	Success    bool         `json:"success"`
	Data       interface{}  `json:"data"`
	Pagination *Pagination  `json:"pagination,omitempty"`
	Error      *ErrorDetail `json:"error"`
	Message    string       `json:"message"`
	RequestID  string       `json:"requestId"`
	Timestamp  string       `json:"timestamp"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

// Success renders a single payload; pag is optional and only set for feed pages.
func Success(c *gin.Context, status int, data interface{}, pag *Pagination) {
	c.JSON(status, APIResponse{
		Success:    true,
		Data:       data,
		Pagination: pag,
		RequestID:  c.GetString("X-Request-ID"),
		Timestamp:  time.Now().Format(time.RFC3339),
	})
}

func Error(c *gin.Context, status int, errCode string, message string, details interface{}) {
	c.JSON(status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &ErrorDetail{
			Code:    errCode,
			Message: message,
			Details: details,
		},
		Message:   message,
		RequestID: c.GetString("X-Request-ID"),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
