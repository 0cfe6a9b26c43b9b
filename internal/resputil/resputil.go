package resputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the uniform envelope returned by every endpoint.
type Response[T any] struct {
	Code ErrorCode `json:"code"`
	Data T         `json:"data"`
	Msg  string    `json:"msg"`
}

func Success[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, Response[T]{
		Code: OK,
		Data: data,
		Msg:  "",
	})
}

// Error responds with HTTP 200 and a business error code.
func Error(c *gin.Context, msg string, code ErrorCode) {
	c.JSON(http.StatusOK, Response[any]{
		Code: code,
		Data: nil,
		Msg:  msg,
	})
}

// HTTPError responds with a non-200 status and a business error code.
func HTTPError(c *gin.Context, statusCode int, msg string, code ErrorCode) {
	c.JSON(statusCode, Response[any]{
		Code: code,
		Data: nil,
		Msg:  msg,
	})
}

func BadRequestError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusBadRequest, msg, InvalidRequest)
}
