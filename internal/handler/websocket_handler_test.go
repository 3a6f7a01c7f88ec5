package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/crediflow/crediflow-backend/internal/middleware"
	"github.com/crediflow/crediflow-backend/internal/websocket"
)

// mockTokenParser is a test double for staff token validation
type mockTokenParser struct {
	claims *middleware.StaffClaims
	err    error
}

func (m *mockTokenParser) ParseToken(raw string) (*middleware.StaffClaims, error) {
	return m.claims, m.err
}

func staffClaims(userID uuid.UUID, role string) *middleware.StaffClaims {
	return &middleware.StaffClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

var testAllowedOrigins = []string{"http://localhost:3000", "https://crediflow.app"}

func TestWebSocketHandler_HandleWS_MissingToken(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	parser := &mockTokenParser{claims: staffClaims(uuid.New(), "AGENT")}
	h := NewWebSocketHandler(hub, parser, testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)

	assert.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestWebSocketHandler_HandleWS_InvalidToken(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	parser := &mockTokenParser{err: middleware.ErrInvalidToken}
	h := NewWebSocketHandler(hub, parser, testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/ws?token=invalid-jwt", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)

	assert.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestWebSocketHandler_HandleWS_MalformedSubject(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	claims := staffClaims(uuid.New(), "AGENT")
	claims.Subject = "not-a-uuid"
	parser := &mockTokenParser{claims: claims}
	h := NewWebSocketHandler(hub, parser, testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/ws?token=some-jwt", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)

	assert.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestWebSocketHandler_HandleWS_ValidToken_NoUpgrade(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	parser := &mockTokenParser{claims: staffClaims(uuid.New(), "MANAGER")}
	h := NewWebSocketHandler(hub, parser, testAllowedOrigins)

	// Valid token but not a WebSocket upgrade request; auth must pass before
	// the upgrade fails.
	req := httptest.NewRequest(http.MethodGet, "/ws?token=valid-jwt", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)

	assert.Error(t, err)
	assert.NotContains(t, err.Error(), "unauthorized")
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	hub := websocket.NewHub()
	parser := &mockTokenParser{claims: staffClaims(uuid.New(), "ADMIN")}
	h := NewWebSocketHandler(hub, parser, testAllowedOrigins)

	tests := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"allowed origin", "http://localhost:3000", true},
		{"allowed origin https", "https://crediflow.app", true},
		{"disallowed origin", "https://evil.com", false},
		{"empty origin (same-origin)", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			result := h.checkOrigin(req)
			assert.Equal(t, tt.expected, result)
		})
	}
}
