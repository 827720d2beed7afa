package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

// ErrorBody is the error payload: a stable kind plus optional field details.
type ErrorBody struct {
	Kind    string            `json:"kind"`
	Details map[string]string `json:"details,omitempty"`
}

// ListMeta accompanies list responses.
type ListMeta struct {
	Count int `json:"count"`
}

func Success[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	}
}

func Error[T any](ctx *gin.Context, status int, message string, err interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	}
}

// OK writes a success envelope with the given status.
func OK[T any](ctx *gin.Context, status int, data T, message string) {
	ctx.JSON(status, Success(ctx, status, data, message, nil))
}

// Fail writes an error envelope and aborts the handler chain.
func Fail(ctx *gin.Context, status int, message string, body ErrorBody) {
	ctx.AbortWithStatusJSON(status, Error[any](ctx, status, message, body))
}
