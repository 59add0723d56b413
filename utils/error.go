package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				zap.L().Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("requestId", c.Writer.Header().Get("X-Request-ID")),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	fields := []zap.Field{
		zap.String("details", details),
		zap.String("path", c.Request.URL.Path),
		zap.String("requestId", c.Writer.Header().Get("X-Request-ID")),
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error(message, fields...)
	} else {
		zap.L().Warn(message, fields...)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message, Details: details})
}
