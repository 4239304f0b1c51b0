package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const (
	codeOK             = 0
	codeBadRequest     = 40001
	codeNotFound       = 40401
	codeConflict       = 40901
	codeUnavailable    = 50301
	codeInternal       = 50000
	codeDeliveryFailed = 50201
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: codeOK, Message: "success", Data: data})
}

func fail(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, Response{Code: code, Message: message})
}

func badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, codeBadRequest, message)
}

func notFound(c *gin.Context) {
	fail(c, http.StatusNotFound, codeNotFound, "route not found")
}

func internalError(c *gin.Context) {
	fail(c, http.StatusInternalServerError, codeInternal, "internal server error")
}
