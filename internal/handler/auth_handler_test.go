package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/service"
	"github.com/crediflow/crediflow-backend/internal/testutil"
)

type staticTokenIssuer struct {
	token string
}

func (s *staticTokenIssuer) IssueToken(_ *domain.StaffUser) (string, error) {
	return s.token, nil
}

func newAuthFixture(t *testing.T) (*AuthHandler, *domain.StaffUser) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &domain.StaffUser{
		ID:           uuid.New(),
		Name:         "Priya Sharma",
		Email:        "priya@crediflow.app",
		PasswordHash: string(hash),
		Role:         domain.RoleManager,
	}

	staffRepo := testutil.NewMockStaffUserRepository()
	staffRepo.AddUser(user)

	authService := service.NewAuthService(staffRepo, &staticTokenIssuer{token: "signed-token"})
	staffService := service.NewStaffService(staffRepo)
	return NewAuthHandler(authService, staffService), user
}

func TestLogin_Success(t *testing.T) {
	e := echo.New()
	handler, user := newAuthFixture(t)

	reqBody := `{"email": "priya@crediflow.app", "password": "secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var result service.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if result.Token != "signed-token" {
		t.Errorf("Expected token 'signed-token', got %s", result.Token)
	}
	if result.User.ID != user.ID {
		t.Errorf("Expected user %s, got %s", user.ID, result.User.ID)
	}
	if strings.Contains(rec.Body.String(), user.PasswordHash) {
		t.Error("Response must not leak the password hash")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	e := echo.New()
	handler, _ := newAuthFixture(t)

	reqBody := `{"email": "priya@crediflow.app", "password": "wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	e := echo.New()
	handler, _ := newAuthFixture(t)

	reqBody := `{"email": "nobody@crediflow.app", "password": "secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	e := echo.New()
	handler, _ := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email": ""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestMe_ReturnsAuthenticatedUser(t *testing.T) {
	e := echo.New()
	handler, user := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, user.ID, user.Role)

	if err := handler.Me(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var got domain.StaffUser
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if got.Email != user.Email {
		t.Errorf("Expected email %s, got %s", user.Email, got.Email)
	}
}
