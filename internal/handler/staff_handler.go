package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/service"
)

// StaffHandler handles staff account HTTP requests
type StaffHandler struct {
	staffService *service.StaffService
}

// NewStaffHandler creates a new StaffHandler
func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

// CreateStaffRequest represents the create staff request body
type CreateStaffRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
	Role         string `json:"role"`
}

// CreateStaff handles POST /api/v1/staff
func (h *StaffHandler) CreateStaff(c echo.Context) error {
	var req CreateStaffRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.staffService.Create(c.Request().Context(), service.CreateStaffInput{
		Name:         req.Name,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Password:     req.Password,
		Role:         domain.Role(req.Role),
	})
	if err != nil {
		return respondDomainError(c, err, "create staff user")
	}

	log.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("Staff user created")
	return c.JSON(http.StatusCreated, user)
}

// GetStaff handles GET /api/v1/staff/:id
func (h *StaffHandler) GetStaff(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid staff ID", nil)
	}

	user, err := h.staffService.Get(c.Request().Context(), id)
	if err != nil {
		return respondDomainError(c, err, "get staff user")
	}
	return c.JSON(http.StatusOK, user)
}

// ListStaff handles GET /api/v1/staff?role=MANAGER
func (h *StaffHandler) ListStaff(c echo.Context) error {
	role := domain.Role(c.QueryParam("role"))
	if role == "" {
		return NewValidationError(c, "Missing role parameter", []ValidationError{
			{Field: "role", Message: "Must be ADMIN, MANAGER, or AGENT"},
		})
	}

	users, err := h.staffService.ListByRole(c.Request().Context(), role)
	if err != nil {
		return respondDomainError(c, err, "list staff users")
	}
	if users == nil {
		users = []*domain.StaffUser{}
	}
	return c.JSON(http.StatusOK, users)
}

// DeleteStaff handles DELETE /api/v1/staff/:id
func (h *StaffHandler) DeleteStaff(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid staff ID", nil)
	}

	if err := h.staffService.Delete(c.Request().Context(), id); err != nil {
		return respondDomainError(c, err, "delete staff user")
	}
	return c.NoContent(http.StatusNoContent)
}
