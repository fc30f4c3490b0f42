package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/eaglebank/auth-api/internal/command"
	"github.com/eaglebank/auth-api/internal/repository"
	"github.com/eaglebank/auth-api/shared/cqrs"
	"github.com/eaglebank/auth-api/shared/middleware"
	"github.com/eaglebank/auth-api/shared/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserCommander defines the write-side operations used by UserHandler.
type UserCommander interface {
	UpdateEmail(context.Context, cqrs.UpdateEmailCommand) (*models.UserView, error)
	UpdateRole(context.Context, cqrs.UpdateRoleCommand) (*models.UserView, error)
	DeleteAccount(context.Context, cqrs.DeleteAccountCommand) error
}

// UserQuerier defines the read-side operations used by UserHandler.
type UserQuerier interface {
	GetUser(context.Context, cqrs.GetUserQuery) (*models.UserView, error)
}

// UserHandler routes requests to the command or query service as appropriate.
// Every route acts on the identity set by AuthMiddleware.
type UserHandler struct {
	commands UserCommander
	queries  UserQuerier
	logger   *zap.Logger
}

type UpdateEmailRequest struct {
	Email string `json:"email" validate:"required"`
}

type UpdateRoleRequest struct {
	UserID   int64  `json:"userId" validate:"required,gt=0"`
	UserRole string `json:"userRole" validate:"required,oneof=admin user"`
}

type UserResponse struct {
	Message string           `json:"message,omitempty"`
	User    *models.UserView `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func NewUserHandler(commands UserCommander, queries UserQuerier, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{commands: commands, queries: queries, logger: logger}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := requireIdentity(c)
	if !ok {
		return
	}

	view, err := h.queries.GetUser(c.Request.Context(), cqrs.GetUserQuery{UserID: userID})
	if err != nil {
		h.respondWithStoreError(c, "get user", err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{User: view})
}

func (h *UserHandler) UpdateEmail(c *gin.Context) {
	userID, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.UpdateEmail(c.Request.Context(), cqrs.UpdateEmailCommand{
		UserID: userID,
		Email:  req.Email,
	})
	if err != nil {
		h.respondWithStoreError(c, "update email", err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{Message: "Email updated successfully", User: view})
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	userID, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.UpdateRole(c.Request.Context(), cqrs.UpdateRoleCommand{
		RequestingUserID: userID,
		TargetUserID:     req.UserID,
		Role:             req.UserRole,
	})
	if err != nil {
		if errors.Is(err, command.ErrForbidden) {
			middleware.RespondWithError(c, http.StatusForbidden, "Forbidden: only admins can change roles")
			return
		}
		h.respondWithStoreError(c, "update role", err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{Message: "User role updated successfully", User: view})
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := requireIdentity(c)
	if !ok {
		return
	}

	if err := h.commands.DeleteAccount(c.Request.Context(), cqrs.DeleteAccountCommand{UserID: userID}); err != nil {
		h.respondWithStoreError(c, "delete account", err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Account deleted successfully"})
}

func (h *UserHandler) respondWithStoreError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "User not found")
	case errors.Is(err, repository.ErrEmailTaken):
		middleware.RespondWithError(c, http.StatusConflict, "Email already in use")
	default:
		h.logger.Error(op+" failed", zap.Error(err), zap.String("request_id", middleware.GetRequestID(c)))
		middleware.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func requireIdentity(c *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Unauthorized: no token provided")
	}
	return userID, ok
}
