package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/crediflow/crediflow-backend/internal/domain"
)

// LoanTypeService manages the product templates loans are originated from.
// Edits here never touch existing applications: their terms were frozen at
// submission.
type LoanTypeService struct {
	loanTypeRepo domain.LoanTypeRepository
}

// NewLoanTypeService creates a new LoanTypeService
func NewLoanTypeService(loanTypeRepo domain.LoanTypeRepository) *LoanTypeService {
	return &LoanTypeService{loanTypeRepo: loanTypeRepo}
}

// Create creates a new loan type
func (s *LoanTypeService) Create(ctx context.Context, loanType *domain.LoanType) (*domain.LoanType, error) {
	if err := loanType.Validate(); err != nil {
		return nil, err
	}
	if !loanType.InterestType.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if loanType.ID == uuid.Nil {
		loanType.ID = uuid.New()
	}
	if loanType.Status == "" {
		loanType.Status = domain.LoanTypeActive
	}
	return s.loanTypeRepo.Create(ctx, loanType)
}

// Get retrieves a loan type by ID
func (s *LoanTypeService) Get(ctx context.Context, id uuid.UUID) (*domain.LoanType, error) {
	return s.loanTypeRepo.GetByID(ctx, id)
}

// List retrieves all loan types
func (s *LoanTypeService) List(ctx context.Context) ([]*domain.LoanType, error) {
	return s.loanTypeRepo.List(ctx)
}

// Update updates an existing loan type
func (s *LoanTypeService) Update(ctx context.Context, loanType *domain.LoanType) (*domain.LoanType, error) {
	if err := loanType.Validate(); err != nil {
		return nil, err
	}
	if !loanType.InterestType.Valid() {
		return nil, domain.ErrInvalidInput
	}
	return s.loanTypeRepo.Update(ctx, loanType)
}

// Delete removes a loan type
func (s *LoanTypeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.loanTypeRepo.Delete(ctx, id)
}
