package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplicationStatus is the lifecycle state of a loan application. Status
// moves only along the edges enforced by the loan service; REJECTED and
// CLOSED are terminal.
type ApplicationStatus string

const (
	StatusSubmitted         ApplicationStatus = "SUBMITTED"
	StatusCallVerified      ApplicationStatus = "CALL_VERIFIED"
	StatusContractGenerated ApplicationStatus = "CONTRACT_GENERATED"
	StatusContractSigned    ApplicationStatus = "CONTRACT_SIGNED"
	StatusFieldVerified     ApplicationStatus = "FIELD_VERIFIED"
	StatusAdminApproved     ApplicationStatus = "ADMIN_APPROVED"
	StatusDisbursed         ApplicationStatus = "DISBURSED"
	StatusRejected          ApplicationStatus = "REJECTED"
	StatusClosed            ApplicationStatus = "CLOSED"
)

// Terminal reports whether no transition leaves this status.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusRejected || s == StatusClosed
}

// Rejectable reports whether the loan may still be rejected. Disbursed and
// closed loans cannot be.
func (s ApplicationStatus) Rejectable() bool {
	return s != StatusDisbursed && s != StatusClosed
}

// FeesPaymentMethod decides how the loan's fees are collected.
type FeesPaymentMethod string

const (
	// FeesDeducted withholds fees from the disbursed amount.
	FeesDeducted FeesPaymentMethod = "DEDUCTED"
	// FeesSeparate disburses the full principal; fees are collected later
	// against the fee ledger.
	FeesSeparate FeesPaymentMethod = "SEPARATE"
)

// EmiStatus is the payment state of a single installment.
type EmiStatus string

const (
	EmiPending EmiStatus = "PENDING"
	EmiPartial EmiStatus = "PARTIAL"
	EmiPaid    EmiStatus = "PAID"
)

// EmiRecord is one scheduled installment. EmiAmount grows when penalties
// are applied; PaidAmount accumulates across partial payments. Principal
// and interest components are frozen at schedule generation.
type EmiRecord struct {
	EmiNumber       int             `json:"emiNumber"`
	DueDate         time.Time       `json:"dueDate"`
	EmiAmount       decimal.Decimal `json:"emiAmount"`
	PrincipalAmount decimal.Decimal `json:"principalAmount"`
	InterestAmount  decimal.Decimal `json:"interestAmount"`
	PaidAmount      decimal.Decimal `json:"paidAmount"`
	PaidDate        *time.Time      `json:"paidDate,omitempty"`
	ProofURL        *string         `json:"proofUrl,omitempty"`
	Status          EmiStatus       `json:"status"`
}

// DocumentRecord is an uploaded document reference.
type DocumentRecord struct {
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
	UploadedBy uuid.UUID `json:"uploadedById"`
}

// DocumentSlot holds a document that may be set exactly once. A second Set
// fails with ErrDocumentAlreadySet, so "already uploaded" is a property of
// the type rather than a null check at every call site.
type DocumentSlot struct {
	doc *DocumentRecord
}

// Set stores the document. It fails if the slot is already occupied.
func (s *DocumentSlot) Set(doc DocumentRecord) error {
	if s.doc != nil {
		return ErrDocumentAlreadySet
	}
	d := doc
	s.doc = &d
	return nil
}

// IsSet reports whether a document has been stored.
func (s DocumentSlot) IsSet() bool {
	return s.doc != nil
}

// Get returns the stored document, if any.
func (s DocumentSlot) Get() (DocumentRecord, bool) {
	if s.doc == nil {
		return DocumentRecord{}, false
	}
	return *s.doc, true
}

// MarshalJSON encodes the slot as the document or null.
func (s DocumentSlot) MarshalJSON() ([]byte, error) {
	if s.doc == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.doc)
}

// UnmarshalJSON restores the slot from the document or null.
func (s *DocumentSlot) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		s.doc = nil
		return nil
	}
	var d DocumentRecord
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	s.doc = &d
	return nil
}

// HousePhoto is one geotagged field-verification photograph.
type HousePhoto struct {
	URL          string    `json:"url"`
	UploadedAt   time.Time `json:"uploadedAt"`
	UploadedBy   uuid.UUID `json:"uploadedById"`
	CapturedLive bool      `json:"capturedLive"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
}

// HousePhotoCount is the exact number of photographs field verification
// requires. Partial sets are never persisted.
const HousePhotoCount = 6

// LoanApplication is the central aggregate: frozen terms, the repayment
// schedule, uploaded documents, and the lifecycle status. All mutation goes
// through the loan service's transition operations.
type LoanApplication struct {
	ID         uuid.UUID  `json:"id"`
	CustomerID uuid.UUID  `json:"customerId"`
	LoanTypeID uuid.UUID  `json:"loanTypeId"`
	AgentID    uuid.UUID  `json:"agentId"`
	ManagerID  *uuid.UUID `json:"managerId,omitempty"`
	AdminID    *uuid.UUID `json:"adminId,omitempty"`

	LoanAmount     decimal.Decimal     `json:"loanAmount"`
	InterestRate   decimal.Decimal     `json:"interestRate"`
	InterestType   InterestType        `json:"interestType"`
	LoanDuration   int32               `json:"loanDuration"`
	CollectionFreq CollectionFrequency `json:"collectionFreq"`

	// Fee specs are copied from the loan type (plus any additional fees
	// supplied at creation) so later template edits cannot alter them.
	ProcessingFees FeeSpec   `json:"processingFees"`
	InsuranceFees  FeeSpec   `json:"insuranceFees"`
	OtherFees      []FeeSpec `json:"otherFees"`

	TotalInterest      decimal.Decimal `json:"totalInterest"`
	TotalPayableAmount decimal.Decimal `json:"totalPayableAmount"`
	DisbursedAmount    decimal.Decimal `json:"disbursedAmount"`
	RemainingAmount    decimal.Decimal `json:"remainingAmount"`

	FirstEmiDate time.Time   `json:"firstEmiDate"`
	Repayments   []EmiRecord `json:"repayments"`

	FeesPaymentMethod  FeesPaymentMethod `json:"feesPaymentMethod"`
	DisbursementMethod string            `json:"disbursementMethod"`

	Status ApplicationStatus `json:"status"`

	SubmittedAt      time.Time  `json:"submittedAt"`
	CallVerifiedAt   *time.Time `json:"callVerifiedAt,omitempty"`
	ContractSignedAt *time.Time `json:"contractSignedAt,omitempty"`
	FieldVerifiedAt  *time.Time `json:"fieldVerifiedAt,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	DisbursedAt      *time.Time `json:"disbursedAt,omitempty"`

	ContractDocument       DocumentSlot `json:"contractDocument"`
	SignedContractDocument DocumentSlot `json:"signedContractDocument"`
	HousePhotos            []HousePhoto `json:"housePhotos"`

	Remark string `json:"remark,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Emi returns the installment with the given 1-based number, or nil.
func (l *LoanApplication) Emi(emiNumber int) *EmiRecord {
	for i := range l.Repayments {
		if l.Repayments[i].EmiNumber == emiNumber {
			return &l.Repayments[i]
		}
	}
	return nil
}

// StatusCount is one row of the by-status aggregate used for reporting.
type StatusCount struct {
	Status ApplicationStatus
	Count  int64
}

type LoanApplicationRepository interface {
	Create(ctx context.Context, loan *LoanApplication) (*LoanApplication, error)
	GetByID(ctx context.Context, id uuid.UUID) (*LoanApplication, error)
	List(ctx context.Context) ([]*LoanApplication, error)

	// UpdateWithLock loads the loan under a row lock, applies mutate, and
	// writes the whole record back in the same transaction. Concurrent
	// callers on the same loan id serialize here.
	UpdateWithLock(ctx context.Context, id uuid.UUID, mutate func(*LoanApplication) error) (*LoanApplication, error)

	// Disburse is UpdateWithLock plus the fee-ledger insert the mutate
	// callback returns, committed as one atomic unit.
	Disburse(ctx context.Context, id uuid.UUID, mutate func(*LoanApplication) (*LoanFees, error)) (*LoanApplication, *LoanFees, error)

	Delete(ctx context.Context, id uuid.UUID) error

	CountByStatus(ctx context.Context) ([]StatusCount, error)
	SumDisbursed(ctx context.Context) (decimal.Decimal, error)
}
