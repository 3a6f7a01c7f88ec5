package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/crediflow/crediflow-backend/internal/domain"
)

// StaffService manages back-office operator accounts.
type StaffService struct {
	staffRepo domain.StaffUserRepository
}

// NewStaffService creates a new StaffService
func NewStaffService(staffRepo domain.StaffUserRepository) *StaffService {
	return &StaffService{staffRepo: staffRepo}
}

// CreateStaffInput contains input for registering a staff user
type CreateStaffInput struct {
	Name         string
	Email        string
	MobileNumber string
	Password     string
	Role         domain.Role
}

// Create registers a staff user with a bcrypt-hashed password.
func (s *StaffService) Create(ctx context.Context, input CreateStaffInput) (*domain.StaffUser, error) {
	if input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, input.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.staffRepo.Create(ctx, &domain.StaffUser{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        input.Email,
		MobileNumber: input.MobileNumber,
		PasswordHash: string(hash),
		Role:         input.Role,
	})
}

// Get retrieves a staff user by ID
func (s *StaffService) Get(ctx context.Context, id uuid.UUID) (*domain.StaffUser, error) {
	return s.staffRepo.GetByID(ctx, id)
}

// ListByRole retrieves staff users with the given role
func (s *StaffService) ListByRole(ctx context.Context, role domain.Role) ([]*domain.StaffUser, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	return s.staffRepo.ListByRole(ctx, role)
}

// Delete removes a staff user
func (s *StaffService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.staffRepo.Delete(ctx, id)
}
