package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/testutil"
)

func validLoanType() *domain.LoanType {
	return &domain.LoanType{
		LoanName:       "Agriculture",
		MinAmount:      decimal.NewFromInt(5000),
		MaxAmount:      decimal.NewFromInt(50000),
		InterestRate:   decimal.NewFromInt(10),
		InterestType:   domain.InterestReducing,
		LoanDuration:   6,
		CollectionFreq: domain.FreqWeekly,
	}
}

func TestLoanTypeCreate_Defaults(t *testing.T) {
	svc := NewLoanTypeService(testutil.NewMockLoanTypeRepository())

	created, err := svc.Create(context.Background(), validLoanType())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != domain.LoanTypeActive {
		t.Errorf("Expected default ACTIVE, got %s", created.Status)
	}
}

func TestLoanTypeCreate_InvalidBounds(t *testing.T) {
	svc := NewLoanTypeService(testutil.NewMockLoanTypeRepository())

	loanType := validLoanType()
	loanType.MinAmount = decimal.NewFromInt(60000)
	_, err := svc.Create(context.Background(), loanType)
	if !errors.Is(err, domain.ErrLoanTypeBoundsInvalid) {
		t.Errorf("Expected ErrLoanTypeBoundsInvalid, got %v", err)
	}
}

func TestLoanTypeCreate_UnknownInterestType(t *testing.T) {
	svc := NewLoanTypeService(testutil.NewMockLoanTypeRepository())

	loanType := validLoanType()
	loanType.InterestType = "COMPOUND"
	_, err := svc.Create(context.Background(), loanType)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestLoanTypeUpdate_Missing(t *testing.T) {
	svc := NewLoanTypeService(testutil.NewMockLoanTypeRepository())

	loanType := validLoanType()
	loanType.ID = uuid.New()
	_, err := svc.Update(context.Background(), loanType)
	if !errors.Is(err, domain.ErrLoanTypeNotFound) {
		t.Errorf("Expected ErrLoanTypeNotFound, got %v", err)
	}
}
