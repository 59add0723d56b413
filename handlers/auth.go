package handlers

import (
	"errors"
	"net/http"

	"oseplatform/middleware"
	"oseplatform/models"
	"oseplatform/services/operator"
	"oseplatform/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves operator login and logout.
type AuthHandler struct {
	Service operator.OperatorService
}

func NewAuthHandler(svc operator.OperatorService) *AuthHandler {
	return &AuthHandler{Service: svc}
}

func (h *AuthHandler) LoginHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	resp, err := h.Service.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, operator.ErrInvalidCredentials) {
		utils.JSONError(c, http.StatusUnauthorized, "Invalid email or password", "")
		return
	}
	if err != nil {
		logger.Error("Login failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Login failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Missing or invalid Authorization header", "")
		return
	}
	if err := h.Service.Logout(c.Request.Context(), token); err != nil {
		if errors.Is(err, operator.ErrUnauthorized) {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid token", "")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "Logout failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
