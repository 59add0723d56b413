package middleware

import (
	"errors"
	"net/http"
	"strings"

	"oseplatform/models"
	"oseplatform/services/operator"
	"oseplatform/utils"

	"github.com/gin-gonic/gin"
)

const (
	operatorKey = "operator"
	tokenKey    = "token"
)

// OperatorAuthMiddleware requires a valid, non-revoked operator bearer token.
func OperatorAuthMiddleware(svc operator.OperatorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, "Missing or invalid Authorization header", "")
			return
		}

		op, err := svc.Authenticate(c.Request.Context(), token)
		switch {
		case errors.Is(err, operator.ErrUnauthorized), errors.Is(err, operator.ErrTokenRevoked):
			utils.JSONError(c, http.StatusUnauthorized, "Invalid token", err.Error())
			return
		case err != nil:
			utils.JSONError(c, http.StatusServiceUnavailable, "Authentication unavailable", err.Error())
			return
		}

		c.Set(operatorKey, *op)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// CurrentOperator returns the operator set by OperatorAuthMiddleware.
func CurrentOperator(c *gin.Context) (models.Operator, bool) {
	v, ok := c.Get(operatorKey)
	if !ok {
		return models.Operator{}, false
	}
	op, ok := v.(models.Operator)
	return op, ok
}
