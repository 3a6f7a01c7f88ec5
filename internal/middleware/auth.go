package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/crediflow/crediflow-backend/internal/domain"
)

const (
	// UserIDKey is the echo context key for the authenticated staff user's id
	UserIDKey = "user_id"
	// UserRoleKey is the echo context key for the authenticated staff user's role
	UserRoleKey = "user_role"
)

// ErrInvalidToken is returned when a token fails signature or claim checks
var ErrInvalidToken = errors.New("invalid token")

// StaffClaims are the JWT claims issued to back-office staff
type StaffClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates staff JWTs signed with the service secret
type AuthMiddleware struct {
	secret []byte
	expiry time.Duration
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(secret string, expiry time.Duration) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), expiry: expiry}
}

// IssueToken signs a token for the given staff user
func (m *AuthMiddleware) IssueToken(user *domain.StaffUser) (string, error) {
	now := time.Now()
	claims := StaffClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a raw token string and returns its claims
func (m *AuthMiddleware) ParseToken(raw string) (*StaffClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &StaffClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*StaffClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate returns an Echo middleware that validates the Authorization
// header and stores the staff user's id and role on the request context
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := extractBearerToken(c)
			if err != nil {
				return unauthorizedError(c, err.Error())
			}

			claims, err := m.ParseToken(raw)
			if err != nil {
				return unauthorizedError(c, "invalid or expired token")
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return unauthorizedError(c, "invalid token subject")
			}

			c.Set(UserIDKey, userID)
			c.Set(UserRoleKey, domain.Role(claims.Role))
			return next(c)
		}
	}
}

func extractBearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing Authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("malformed Authorization header")
	}
	return parts[1], nil
}

// GetUserID returns the authenticated staff user's id from the echo context
func GetUserID(c echo.Context) uuid.UUID {
	if id, ok := c.Get(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetUserRole returns the authenticated staff user's role from the echo context
func GetUserRole(c echo.Context) domain.Role {
	if role, ok := c.Get(UserRoleKey).(domain.Role); ok {
		return role
	}
	return ""
}
