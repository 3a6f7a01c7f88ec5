package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/crediflow/crediflow-backend/internal/domain"
)

// RequireRoles returns an Echo middleware that rejects requests whose
// authenticated role is not in the allowed set. It must run after
// AuthMiddleware.Authenticate.
func RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := GetUserRole(c)
			if role == "" {
				return unauthorizedError(c, "authentication required")
			}
			if _, ok := allowed[role]; !ok {
				return forbiddenError(c, "role "+string(role)+" may not perform this operation")
			}
			return next(c)
		}
	}
}
