package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/testutil"
)

func TestStaffCreate_HashesPassword(t *testing.T) {
	svc := NewStaffService(testutil.NewMockStaffUserRepository())

	user, err := svc.Create(context.Background(), CreateStaffInput{
		Name:     "Arun",
		Email:    "arun@crediflow.app",
		Password: "s3cret",
		Role:     domain.RoleAgent,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if user.PasswordHash == "s3cret" || user.PasswordHash == "" {
		t.Errorf("Expected hashed password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")); err != nil {
		t.Errorf("Expected hash to verify: %v", err)
	}
}

func TestStaffCreate_DuplicateEmail(t *testing.T) {
	svc := NewStaffService(testutil.NewMockStaffUserRepository())
	input := CreateStaffInput{Name: "Arun", Email: "arun@crediflow.app", Password: "x", Role: domain.RoleAgent}

	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := svc.Create(context.Background(), input)
	var dup domain.DuplicateFieldError
	if !errors.As(err, &dup) {
		t.Errorf("Expected DuplicateFieldError, got %v", err)
	}
}

func TestStaffCreate_InvalidRole(t *testing.T) {
	svc := NewStaffService(testutil.NewMockStaffUserRepository())

	_, err := svc.Create(context.Background(), CreateStaffInput{Email: "x@y", Password: "p", Role: "SUPERVISOR"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
