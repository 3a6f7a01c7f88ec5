package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/middleware"
	"github.com/crediflow/crediflow-backend/internal/service"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService  *service.AuthService
	staffService *service.StaffService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, staffService *service.StaffService) *AuthHandler {
	return &AuthHandler{authService: authService, staffService: staffService}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.Email == "" || req.Password == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "email", Message: "Email and password are required"},
		})
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return NewUnauthorizedError(c, "Invalid email or password")
		}
		log.Error().Err(err).Msg("Login failed")
		return NewInternalError(c, "Login failed")
	}

	log.Info().Str("email", req.Email).Str("role", string(result.User.Role)).Msg("Staff login")
	return c.JSON(http.StatusOK, result)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	userID := middleware.GetUserID(c)
	user, err := h.staffService.Get(c.Request().Context(), userID)
	if err != nil {
		return respondDomainError(c, err, "load profile")
	}
	return c.JSON(http.StatusOK, user)
}
