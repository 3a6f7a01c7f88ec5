package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeePaymentMethodDisbursement is recorded on the fee ledger row when fees
// were deducted from the disbursed amount rather than collected separately.
const FeePaymentMethodDisbursement = "DISBURSEMENT"

// LoanFees is the fee ledger row created exactly once, at disbursement.
// Customer name and mobile are snapshotted so the row stays meaningful even
// if the customer record changes later.
type LoanFees struct {
	ID             uuid.UUID       `json:"id"`
	LoanID         uuid.UUID       `json:"loanId"`
	CustomerID     uuid.UUID       `json:"customerId"`
	CustomerName   string          `json:"customerName"`
	CustomerMobile string          `json:"customerMobile"`
	Amount         decimal.Decimal `json:"amount"`
	Paid           bool            `json:"paid"`
	PaidAt         *time.Time      `json:"paidAt,omitempty"`
	PaymentMethod  *string         `json:"paymentMethod,omitempty"`
	TransactionID  *string         `json:"transactionId,omitempty"`
	ProofURL       *string         `json:"proofUrl,omitempty"`
	CollectedBy    *uuid.UUID      `json:"collectedById,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type LoanFeesRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*LoanFees, error)
	GetByLoanID(ctx context.Context, loanID uuid.UUID) (*LoanFees, error)
	List(ctx context.Context, unpaidOnly bool) ([]*LoanFees, error)
	Update(ctx context.Context, fees *LoanFees) (*LoanFees, error)
}
