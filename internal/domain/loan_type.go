package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrLoanTypeNameRequired    = fmt.Errorf("%w: loan type name is required", ErrInvalidInput)
	ErrLoanTypeBoundsInvalid   = fmt.Errorf("%w: minimum amount must not exceed maximum amount", ErrInvalidInput)
	ErrLoanTypeRateInvalid     = fmt.Errorf("%w: interest rate must not be negative", ErrInvalidInput)
	ErrLoanTypeDurationInvalid = fmt.Errorf("%w: default duration must be at least 1 month", ErrInvalidInput)
)

// InterestType selects how interest accrues over the loan term.
type InterestType string

const (
	InterestFlat     InterestType = "FLAT"
	InterestReducing InterestType = "REDUCING"
)

func (t InterestType) Valid() bool {
	return t == InterestFlat || t == InterestReducing
}

// CollectionFrequency is the cadence of scheduled repayments.
type CollectionFrequency string

const (
	FreqWeekly    CollectionFrequency = "WEEKLY"
	FreqBiweekly  CollectionFrequency = "BIWEEKLY"
	FreqMonthly   CollectionFrequency = "MONTHLY"
	FreqQuarterly CollectionFrequency = "QUARTERLY"
)

// LoanTypeStatus marks whether a product template accepts new applications.
type LoanTypeStatus string

const (
	LoanTypeActive   LoanTypeStatus = "ACTIVE"
	LoanTypeInactive LoanTypeStatus = "INACTIVE"
)

// FeeSpec describes one fee against a principal: a flat amount, or a
// percentage of the principal when IsPercentage is set. Amount may be
// negative (a discount).
type FeeSpec struct {
	Amount       decimal.Decimal `json:"amount"`
	IsPercentage bool            `json:"isPercentage"`
	Description  string          `json:"description,omitempty"`
}

// LoanType is a product template. Submitted applications copy its fee and
// interest terms, so edits here never alter existing schedules.
type LoanType struct {
	ID             uuid.UUID           `json:"id"`
	LoanName       string              `json:"loanName"`
	Status         LoanTypeStatus      `json:"status"`
	Description    string              `json:"description,omitempty"`
	MinAmount      decimal.Decimal     `json:"minAmount"`
	MaxAmount      decimal.Decimal     `json:"maxAmount"`
	InterestRate   decimal.Decimal     `json:"interestRate"`
	InterestType   InterestType        `json:"interestType"`
	ProcessingFees FeeSpec             `json:"processingFees"`
	InsuranceFees  FeeSpec             `json:"insuranceFees"`
	OtherFees      []FeeSpec           `json:"otherFees"`
	LoanDuration   int32               `json:"loanDuration"`
	CollectionFreq CollectionFrequency `json:"collectionFreq"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

func (t *LoanType) Validate() error {
	if t.LoanName == "" {
		return ErrLoanTypeNameRequired
	}
	if t.MinAmount.GreaterThan(t.MaxAmount) {
		return ErrLoanTypeBoundsInvalid
	}
	if t.InterestRate.IsNegative() {
		return ErrLoanTypeRateInvalid
	}
	if t.LoanDuration < 1 {
		return ErrLoanTypeDurationInvalid
	}
	return nil
}

// AllowsAmount reports whether the principal sits inside the template bounds.
func (t *LoanType) AllowsAmount(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(t.MinAmount) && amount.LessThanOrEqual(t.MaxAmount)
}

type LoanTypeRepository interface {
	Create(ctx context.Context, loanType *LoanType) (*LoanType, error)
	GetByID(ctx context.Context, id uuid.UUID) (*LoanType, error)
	List(ctx context.Context) ([]*LoanType, error)
	Update(ctx context.Context, loanType *LoanType) (*LoanType, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
