package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/crediflow/crediflow-backend/internal/domain"
)

// TokenIssuer signs access tokens for authenticated staff.
type TokenIssuer interface {
	IssueToken(user *domain.StaffUser) (string, error)
}

// AuthService authenticates staff against stored bcrypt hashes.
type AuthService struct {
	staffRepo domain.StaffUserRepository
	tokens    TokenIssuer
}

// NewAuthService creates a new AuthService
func NewAuthService(staffRepo domain.StaffUserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{staffRepo: staffRepo, tokens: tokens}
}

// LoginResult is the outcome of a successful login
type LoginResult struct {
	Token string            `json:"token"`
	User  *domain.StaffUser `json:"user"`
}

// Login verifies the credentials and returns a signed token. Unknown email
// and wrong password produce the same error so the response does not leak
// which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}
