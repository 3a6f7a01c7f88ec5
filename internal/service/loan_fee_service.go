package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/websocket"
)

// LoanFeeService manages the fee ledger. Rows are created by loan
// disbursement; this service only reads them and settles the unpaid ones.
type LoanFeeService struct {
	feesRepo  domain.LoanFeesRepository
	docs      *DocumentService
	publisher websocket.EventPublisher
}

// NewLoanFeeService creates a new LoanFeeService
func NewLoanFeeService(feesRepo domain.LoanFeesRepository, docs *DocumentService, publisher websocket.EventPublisher) *LoanFeeService {
	return &LoanFeeService{
		feesRepo:  feesRepo,
		docs:      docs,
		publisher: publisher,
	}
}

// List retrieves fee ledger rows, optionally only the unpaid ones.
func (s *LoanFeeService) List(ctx context.Context, unpaidOnly bool) ([]*domain.LoanFees, error) {
	return s.feesRepo.List(ctx, unpaidOnly)
}

// GetByLoan retrieves the fee ledger row for a loan.
func (s *LoanFeeService) GetByLoan(ctx context.Context, loanID uuid.UUID) (*domain.LoanFees, error) {
	return s.feesRepo.GetByLoanID(ctx, loanID)
}

// CompleteFeePaymentInput contains input for settling a separately-collected
// fee.
type CompleteFeePaymentInput struct {
	FeeID         uuid.UUID
	LoanID        uuid.UUID
	PaymentMethod string
	TransactionID string
	CollectedBy   uuid.UUID
	Proof         *UploadFile
}

// CompleteFeePayment settles an unpaid fee ledger row. Rows already settled
// at disbursement can never be completed again through this path.
func (s *LoanFeeService) CompleteFeePayment(ctx context.Context, input CompleteFeePaymentInput) (*domain.LoanFees, error) {
	if input.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method is required", domain.ErrInvalidInput)
	}

	fees, err := s.feesRepo.GetByID(ctx, input.FeeID)
	if err != nil {
		return nil, err
	}
	if fees.LoanID != input.LoanID {
		return nil, domain.ErrFeeRecordNotFound
	}
	if fees.PaymentMethod != nil && *fees.PaymentMethod == domain.FeePaymentMethodDisbursement {
		return nil, domain.ErrFeeSettledByDisbursement
	}
	if fees.Paid {
		return nil, domain.ErrFeeAlreadyPaid
	}

	if input.Proof != nil {
		url, err := s.docs.UploadImage(ctx, FeeProofPath(fees.ID), input.Proof.Data, input.Proof.Filename, input.Proof.ContentType)
		if err != nil {
			return nil, err
		}
		fees.ProofURL = &url
	}

	now := time.Now()
	method := input.PaymentMethod
	collectedBy := input.CollectedBy
	fees.Paid = true
	fees.PaidAt = &now
	fees.PaymentMethod = &method
	fees.CollectedBy = &collectedBy
	if input.TransactionID != "" {
		txn := input.TransactionID
		fees.TransactionID = &txn
	}

	updated, err := s.feesRepo.Update(ctx, fees)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(websocket.FeePaid(updated))
	return updated, nil
}
