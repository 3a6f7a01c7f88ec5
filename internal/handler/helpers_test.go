package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/middleware"
)

// setupAuthContext seeds the echo context the way the auth middleware would
// after validating a token.
func setupAuthContext(c echo.Context, userID uuid.UUID, role domain.Role) {
	c.Set(middleware.UserIDKey, userID)
	c.Set(middleware.UserRoleKey, role)
}
