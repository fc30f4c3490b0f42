package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/eaglebank/auth-api/internal/query"
	"github.com/eaglebank/auth-api/internal/repository"
	"github.com/eaglebank/auth-api/shared/cqrs"
	"github.com/eaglebank/auth-api/shared/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthQuerier defines the read-side operations used by AuthHandler.
type AuthQuerier interface {
	Login(context.Context, cqrs.LoginCommand) (string, error)
	RefreshToken(context.Context, cqrs.RefreshTokenCommand) (string, error)
}

// AuthHandler handles login and token refresh. No command service needed.
type AuthHandler struct {
	queries AuthQuerier
	logger  *zap.Logger
}

// Login deliberately skips email format checks; any stored email can log in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

func NewAuthHandler(queries AuthQuerier, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{queries: queries, logger: logger}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	token, err := h.queries.Login(c.Request.Context(), cqrs.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, query.ErrInvalidCredentials):
			middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		default:
			h.logger.Error("login failed", zap.Error(err), zap.String("request_id", middleware.GetRequestID(c)))
			middleware.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

// RefreshToken re-issues a token for the identity AuthMiddleware verified,
// as long as that account still exists.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Unauthorized: no token provided")
		return
	}
	email, _ := middleware.GetEmail(c)

	token, err := h.queries.RefreshToken(c.Request.Context(), cqrs.RefreshTokenCommand{
		UserID: userID,
		Email:  email,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("token refresh failed", zap.Error(err), zap.Int64("user_id", userID))
		middleware.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token})
}
