package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the correlation identifier of a request.
	RequestIDHeader      = "X-Request-ID"
	requestIDContextKey  = "requestID"
	maxIncomingRequestID = 64
)

// RequestID assigns every request a correlation identifier, reusing a sane
// incoming one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxIncomingRequestID {
			id = uuid.NewString()
		}
		c.Set(requestIDContextKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the correlation identifier of the request.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// AbortWithError stops the chain with a JSON error body.
func AbortWithError(c *gin.Context, status int, message string) {
	abortJSON(c, status, message)
}

func abortJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, RequestID: GetRequestID(c)})
}

// NotFound answers unknown routes in the common error shape.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortJSON(c, http.StatusNotFound, "not found")
	}
}
