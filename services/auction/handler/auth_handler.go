package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	model "github.com/kaguya07/Auction-Trading/internal/models"
	"github.com/kaguya07/Auction-Trading/services/auction/helpers"
	"github.com/kaguya07/Auction-Trading/utils"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, username, email, password string) (model.User, error)
	Login(ctx context.Context, email, password string) (string, model.User, error)
}

type AuthHandler struct {
	service AuthServiceInterface
}

func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterHandler handles POST /api/auth/register
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("RegisterHandler: failed to register user", map[string]any{
			"email": req.Email,
			"error": err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, user, "user registered successfully")
	helpers.LogSuccess("RegisterHandler", "user registered successfully", map[string]any{
		"user_id":  user.UserID,
		"username": user.Username,
	})
}

// LoginHandler handles POST /api/auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("LoginHandler: login failed", map[string]any{
			"email": req.Email,
			"error": err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.LoginResponse{Token: token, User: user}, "login successful")
	helpers.LogSuccess("LoginHandler", "login successful", map[string]any{
		"user_id": user.UserID,
	})
}
