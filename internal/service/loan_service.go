package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crediflow/crediflow-backend/internal/contract"
	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/emi"
	"github.com/crediflow/crediflow-backend/internal/websocket"
)

// UploadFile is a file received from a multipart request.
type UploadFile struct {
	Data        []byte
	Filename    string
	ContentType string
}

// LoanService owns the loan application lifecycle. Every status change goes
// through one of its transition methods; nothing else writes loan state.
type LoanService struct {
	loanRepo     domain.LoanApplicationRepository
	customerRepo domain.CustomerRepository
	loanTypeRepo domain.LoanTypeRepository
	staffRepo    domain.StaffUserRepository
	docs         *DocumentService
	renderer     contract.Renderer
	publisher    websocket.EventPublisher
}

// NewLoanService creates a new LoanService
func NewLoanService(
	loanRepo domain.LoanApplicationRepository,
	customerRepo domain.CustomerRepository,
	loanTypeRepo domain.LoanTypeRepository,
	staffRepo domain.StaffUserRepository,
	docs *DocumentService,
	renderer contract.Renderer,
	publisher websocket.EventPublisher,
) *LoanService {
	return &LoanService{
		loanRepo:     loanRepo,
		customerRepo: customerRepo,
		loanTypeRepo: loanTypeRepo,
		staffRepo:    staffRepo,
		docs:         docs,
		renderer:     renderer,
		publisher:    publisher,
	}
}

// CreateLoanInput contains input for originating a loan application. A zero
// LoanDuration or empty CollectionFreq falls back to the loan type's default.
type CreateLoanInput struct {
	CustomerID         uuid.UUID
	LoanTypeID         uuid.UUID
	AgentID            uuid.UUID
	LoanAmount         decimal.Decimal
	LoanDuration       int32
	CollectionFreq     domain.CollectionFrequency
	FirstEmiDate       time.Time
	FeesPaymentMethod  domain.FeesPaymentMethod
	DisbursementMethod string
	AdditionalFees     []domain.FeeSpec
}

// Create originates a loan application: terms and fee specs are frozen from
// the loan type, the full repayment schedule is computed up front, and the
// record starts SUBMITTED.
func (s *LoanService) Create(ctx context.Context, input CreateLoanInput) (*domain.LoanApplication, error) {
	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	loanType, err := s.loanTypeRepo.GetByID(ctx, input.LoanTypeID)
	if err != nil {
		return nil, err
	}

	if !loanType.AllowsAmount(input.LoanAmount) {
		return nil, domain.ErrLoanAmountOutOfBounds
	}

	if input.FeesPaymentMethod != domain.FeesDeducted && input.FeesPaymentMethod != domain.FeesSeparate {
		return nil, fmt.Errorf("%w: unknown fees payment method %q", domain.ErrInvalidInput, input.FeesPaymentMethod)
	}

	duration := input.LoanDuration
	if duration == 0 {
		duration = loanType.LoanDuration
	}
	if duration < 1 {
		return nil, fmt.Errorf("%w: loan duration must be at least one month", domain.ErrInvalidInput)
	}
	freq := input.CollectionFreq
	if freq == "" {
		freq = loanType.CollectionFreq
	}

	otherFees := append(append([]domain.FeeSpec{}, loanType.OtherFees...), input.AdditionalFees...)

	// Reject up front a fee structure that could never disburse.
	totalFees := emi.TotalFees(input.LoanAmount, loanType.ProcessingFees, loanType.InsuranceFees, otherFees)
	disbursed, err := emi.DisbursedAmount(input.LoanAmount, totalFees, input.FeesPaymentMethod)
	if err != nil {
		return nil, err
	}

	schedule, quote, err := emi.Schedule(
		input.LoanAmount, loanType.InterestRate,
		duration, freq, loanType.InterestType,
		input.FirstEmiDate,
	)
	if err != nil {
		return nil, err
	}

	loan := &domain.LoanApplication{
		ID:                 uuid.New(),
		CustomerID:         customer.ID,
		LoanTypeID:         loanType.ID,
		AgentID:            input.AgentID,
		LoanAmount:         input.LoanAmount,
		InterestRate:       loanType.InterestRate,
		InterestType:       loanType.InterestType,
		LoanDuration:       duration,
		CollectionFreq:     freq,
		ProcessingFees:     loanType.ProcessingFees,
		InsuranceFees:      loanType.InsuranceFees,
		OtherFees:          otherFees,
		TotalInterest:      quote.TotalInterest,
		TotalPayableAmount: quote.TotalPayable,
		DisbursedAmount:    disbursed,
		RemainingAmount:    quote.TotalPayable,
		FirstEmiDate:       input.FirstEmiDate,
		Repayments:         schedule,
		FeesPaymentMethod:  input.FeesPaymentMethod,
		DisbursementMethod: input.DisbursementMethod,
		Status:             domain.StatusSubmitted,
		SubmittedAt:        time.Now(),
	}

	created, err := s.loanRepo.Create(ctx, loan)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(websocket.LoanCreated(created))
	return created, nil
}

// Get retrieves a loan application by ID
func (s *LoanService) Get(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	return s.loanRepo.GetByID(ctx, id)
}

// List retrieves all loan applications
func (s *LoanService) List(ctx context.Context) ([]*domain.LoanApplication, error) {
	return s.loanRepo.List(ctx)
}

// MarkCallVerified moves a submitted loan to CALL_VERIFIED, recording the
// manager who made the verification call.
func (s *LoanService) MarkCallVerified(ctx context.Context, loanID, managerID uuid.UUID) (*domain.LoanApplication, error) {
	loan, err := s.loanRepo.UpdateWithLock(ctx, loanID, func(l *domain.LoanApplication) error {
		if l.Status != domain.StatusSubmitted {
			return domain.TransitionError{Action: "mark call verified", Status: l.Status}
		}
		now := time.Now()
		l.ManagerID = &managerID
		l.CallVerifiedAt = &now
		l.Status = domain.StatusCallVerified
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(websocket.LoanStatusChanged(loan))
	return loan, nil
}

// GenerateContract renders the loan agreement from a frozen snapshot,
// uploads it, and moves the loan to CONTRACT_GENERATED. The guard checks the
// signed document slot rather than the unsigned one: once a signed contract
// exists, regeneration would orphan the signature.
func (s *LoanService) GenerateContract(ctx context.Context, loanID, managerID uuid.UUID) (*domain.LoanApplication, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.StatusCallVerified {
		return nil, domain.TransitionError{Action: "generate contract", Status: loan.Status}
	}
	if loan.SignedContractDocument.IsSet() {
		return nil, domain.ErrDocumentAlreadySet
	}

	customer, err := s.customerRepo.GetByID(ctx, loan.CustomerID)
	if err != nil {
		return nil, err
	}
	loanType, err := s.loanTypeRepo.GetByID(ctx, loan.LoanTypeID)
	if err != nil {
		return nil, err
	}

	// Render and upload outside the row lock; the guards re-run inside it.
	rendered, contentType, err := s.renderer.Render(ctx, contractSnapshot(loan, customer, loanType))
	if err != nil {
		return nil, fmt.Errorf("contract generation failed: %w", err)
	}
	url, err := s.docs.UploadRendered(ctx, ContractPath(loan.ID), rendered, contentType)
	if err != nil {
		return nil, fmt.Errorf("contract generation failed: %w", err)
	}

	updated, err := s.loanRepo.UpdateWithLock(ctx, loanID, func(l *domain.LoanApplication) error {
		if l.Status != domain.StatusCallVerified {
			return domain.TransitionError{Action: "generate contract", Status: l.Status}
		}
		if l.SignedContractDocument.IsSet() {
			return domain.ErrDocumentAlreadySet
		}
		if err := l.ContractDocument.Set(domain.DocumentRecord{
			URL:        url,
			UploadedAt: time.Now(),
			UploadedBy: managerID,
		}); err != nil {
			return err
		}
		l.Status = domain.StatusContractGenerated
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(websocket.LoanStatusChanged(updated))
	return updated, nil
}

// UploadSignedContract attaches the customer-signed contract PDF and moves
// the loan to CONTRACT_SIGNED.
func (s *LoanService) UploadSignedContract(ctx context.Context, loanID uuid.UUID, file UploadFile, userID uuid.UUID) (*domain.LoanApplication, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.StatusContractGenerated {
		return nil, domain.TransitionError{Action: "upload signed contract", Status: loan.Status}
	}
	if loan.SignedContractDocument.IsSet() {
		return nil, domain.ErrDocumentAlreadySet
	}

	url, err := s.docs.UploadPDF(ctx, SignedContractPath(loan.ID), file.Data, file.ContentType)
	if err != nil {
		return nil, err
	}

	updated, err := s.loanRepo.UpdateWithLock(ctx, loanID, func(l *domain.LoanApplication) error {
		if l.Status != domain.StatusContractGenerated {
			return domain.TransitionError{Action: "upload signed contract", Status: l.Status}
		}
		if err := l.SignedContractDocument.Set(domain.DocumentRecord{
			URL:        url,
			UploadedAt: time.Now(),
			UploadedBy: userID,
		}); err != nil {
			return err
		}
		now := time.Now()
		l.ContractSignedAt = &now
		l.Status = domain.StatusContractSigned
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(websocket.LoanStatusChanged(updated))
	return updated, nil
}

// FieldVerify records the agent's house visit: exactly six geotagged photos,
// stored all-or-nothing. Moves the loan to FIELD_VERIFIED.
func (s *LoanService) FieldVerify(ctx context.Context, loanID uuid.UUID, files []UploadFile, latitude, longitude float64, agentID uuid.UUID) (*domain.LoanApplication, error) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return nil, domain.ErrInvalidCoordinates
	}
	if len(files) != domain.HousePhotoCount {
		return nil, domain.ErrPhotoCountInvalid
	}

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.StatusContractSigned {
		return nil, domain.TransitionError{Action: "field verify", Status: loan.Status}
	}
	if len(loan.HousePhotos) > 0 {
		return nil, domain.ErrFieldVerificationDone
	}

	now := time.Now()
	photos := make([]domain.HousePhoto, 0, len(files))
	paths := make([]string, 0, len(files))
	for i, file := range files {
		path := HousePhotoPath(loan.ID, i+1)
		url, err := s.docs.UploadImage(ctx, path, file.Data, file.Filename, file.ContentType)
		if err != nil {
			s.cleanupUploads(ctx, paths)
			return nil, err
		}
		paths = append(paths, path)
		photos = append(photos, domain.HousePhoto{
			URL:          url,
			UploadedAt:   now,
			UploadedBy:   agentID,
			CapturedLive: true,
			Latitude:     latitude,
			Longitude:    longitude,
		})
	}

	updated, err := s.loanRepo.UpdateWithLock(ctx, loanID, func(l *domain.LoanApplication) error {
		if l.Status != domain.StatusContractSigned {
			return domain.TransitionError{Action: "field verify", Status: l.Status}
		}
		if len(l.HousePhotos) > 0 {
			return domain.ErrFieldVerificationDone
		}
		verifiedAt := time.Now()
		l.HousePhotos = photos
		l.FieldVerifiedAt = &verifiedAt
		l.Status = domain.StatusFieldVerified
		return nil
	})
	if err != nil {
		s.cleanupUploads(ctx, paths)
		return nil, err
	}
	s.publisher.Publish(websocket.LoanStatusChanged(updated))
	return updated, nil
}

// cleanupUploads removes objects left behind by a failed multi-upload.
// Best effort: a leaked object is preferable to a partial photo set.
func (s *LoanService) cleanupUploads(ctx context.Context, paths []string) {
	for _, path := range paths {
		_ = s.docs.Delete(ctx, path)
	}
}

// AdminApprove moves a field-verified loan to ADMIN_APPROVED. A missing
// remark is stored as the NO REMARK PROVIDED marker.
func (s *LoanService) AdminApprove(ctx context.Context, loanID, adminID uuid.UUID, remark *string) (*domain.LoanApplication, error) {
	if _, err := s.staffRepo.GetByID(ctx, adminID); err != nil {
		return nil, err
	}

	loan, err := s.loanRepo.UpdateWithLock(ctx, loanID, func(l *domain.LoanApplication) error {
		if l.Status != domain.StatusFieldVerified {
			return domain.TransitionError{Action: "approve", Status: l.Status}
		}
		now := time.Now()
		l.AdminID = &adminID
		l.ApprovedAt = &now
		l.Remark = remarkOrDefault(remark)
		l.Status = domain.StatusAdminApproved
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(websocket.LoanStatusChanged(loan))
	return loan, nil
}

// Reject terminates a loan from any state except DISBURSED or CLOSED.
func (s *LoanService) Reject(ctx context.Context, loanID uuid.UUID, remark *string) (*domain.LoanApplication, error) {
	loan, err := s.loanRepo.UpdateWithLock(ctx, loanID, func(l *domain.LoanApplication) error {
		if !l.Status.Rejectable() {
			return domain.TransitionError{Action: "reject", Status: l.Status}
		}
		l.Remark = remarkOrDefault(remark)
		l.Status = domain.StatusRejected
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(websocket.LoanStatusChanged(loan))
	return loan, nil
}

// Disburse pays out an approved loan. The status change and the fee-ledger
// row commit as one atomic unit. Fees are recomputed from the loan's frozen
// specs; when they were deducted from the payout the ledger row is created
// already settled.
func (s *LoanService) Disburse(ctx context.Context, loanID uuid.UUID) (*domain.LoanApplication, *domain.LoanFees, error) {
	current, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}
	customer, err := s.customerRepo.GetByID(ctx, current.CustomerID)
	if err != nil {
		return nil, nil, err
	}

	loan, fees, err := s.loanRepo.Disburse(ctx, loanID, func(l *domain.LoanApplication) (*domain.LoanFees, error) {
		if l.Status != domain.StatusAdminApproved {
			return nil, domain.TransitionError{Action: "disburse", Status: l.Status}
		}

		totalFees := emi.TotalFees(l.LoanAmount, l.ProcessingFees, l.InsuranceFees, l.OtherFees)
		amount, err := emi.DisbursedAmount(l.LoanAmount, totalFees, l.FeesPaymentMethod)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		l.DisbursedAmount = amount
		l.DisbursedAt = &now
		l.Status = domain.StatusDisbursed

		record := &domain.LoanFees{
			ID:             uuid.New(),
			LoanID:         l.ID,
			CustomerID:     l.CustomerID,
			CustomerName:   customer.ApplicantName,
			CustomerMobile: customer.MobileNumber,
			Amount:         totalFees,
			Paid:           l.FeesPaymentMethod == domain.FeesDeducted,
		}
		if record.Paid {
			method := domain.FeePaymentMethodDisbursement
			record.PaidAt = &now
			record.PaymentMethod = &method
			record.TransactionID = &method
		}
		return record, nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.publisher.Publish(websocket.LoanStatusChanged(loan))
	return loan, fees, nil
}

// Close manually closes a disbursed loan.
func (s *LoanService) Close(ctx context.Context, loanID uuid.UUID) (*domain.LoanApplication, error) {
	loan, err := s.loanRepo.UpdateWithLock(ctx, loanID, func(l *domain.LoanApplication) error {
		if l.Status != domain.StatusDisbursed {
			return domain.TransitionError{Action: "close", Status: l.Status}
		}
		l.Status = domain.StatusClosed
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(websocket.LoanStatusChanged(loan))
	return loan, nil
}

// PayEmiInput contains input for recording a repayment against one
// installment. PaymentMethod and TransactionID are accepted from the caller
// but not persisted; only the proof lands on the schedule item.
type PayEmiInput struct {
	LoanID        uuid.UUID
	EmiNumber     int
	PaidAmount    decimal.Decimal
	PaymentMethod string
	TransactionID string
	Proof         *UploadFile
}

// PayEmi accumulates a payment onto an installment. Partial payments stack;
// the installment flips to PAID once the accumulated amount covers the EMI.
// The loan's remaining balance floors at zero and the loan auto-closes when
// it reaches zero, whatever the current status.
func (s *LoanService) PayEmi(ctx context.Context, input PayEmiInput) (*domain.LoanApplication, error) {
	if input.PaidAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: paid amount must be positive", domain.ErrInvalidInput)
	}

	// Cheap guard before paying for the proof upload. The authoritative
	// check re-runs under the row lock.
	current, err := s.loanRepo.GetByID(ctx, input.LoanID)
	if err != nil {
		return nil, err
	}
	target := current.Emi(input.EmiNumber)
	if target == nil {
		return nil, domain.ErrEmiNotFound
	}
	if target.Status == domain.EmiPaid {
		return nil, domain.ErrEmiAlreadyPaid
	}

	var proofURL *string
	if input.Proof != nil {
		url, err := s.docs.UploadImage(ctx, EmiProofPath(input.LoanID, input.EmiNumber), input.Proof.Data, input.Proof.Filename, input.Proof.ContentType)
		if err != nil {
			return nil, err
		}
		proofURL = &url
	}

	closed := false
	loan, err := s.loanRepo.UpdateWithLock(ctx, input.LoanID, func(l *domain.LoanApplication) error {
		e := l.Emi(input.EmiNumber)
		if e == nil {
			return domain.ErrEmiNotFound
		}
		if e.Status == domain.EmiPaid {
			return domain.ErrEmiAlreadyPaid
		}

		now := time.Now()
		e.PaidAmount = e.PaidAmount.Add(input.PaidAmount)
		e.PaidDate = &now
		if proofURL != nil {
			e.ProofURL = proofURL
		}
		if e.PaidAmount.GreaterThanOrEqual(e.EmiAmount) {
			e.Status = domain.EmiPaid
		} else {
			e.Status = domain.EmiPartial
		}

		l.RemainingAmount = l.RemainingAmount.Sub(input.PaidAmount)
		if l.RemainingAmount.IsNegative() {
			l.RemainingAmount = decimal.Zero
		}
		if l.RemainingAmount.IsZero() && l.Status != domain.StatusClosed {
			l.Status = domain.StatusClosed
			closed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(websocket.LoanEmiPaid(loan))
	if closed {
		s.publisher.Publish(websocket.LoanStatusChanged(loan))
	}
	return loan, nil
}

// AddPenalty increases a single installment's EMI amount. The principal and
// interest components stay frozen; only the amount owed grows.
func (s *LoanService) AddPenalty(ctx context.Context, loanID uuid.UUID, emiNumber int, penalty decimal.Decimal) (*domain.LoanApplication, error) {
	if penalty.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: penalty amount must be positive", domain.ErrInvalidInput)
	}

	loan, err := s.loanRepo.UpdateWithLock(ctx, loanID, func(l *domain.LoanApplication) error {
		e := l.Emi(emiNumber)
		if e == nil {
			return domain.ErrEmiNotFound
		}
		if e.Status == domain.EmiPaid {
			return domain.ErrEmiAlreadyPaid
		}
		e.EmiAmount = e.EmiAmount.Add(penalty)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(websocket.LoanPenaltyAdded(loan))
	return loan, nil
}

// Delete removes a loan application entirely. Administrative path; it
// bypasses the lifecycle.
func (s *LoanService) Delete(ctx context.Context, loanID uuid.UUID) error {
	if err := s.loanRepo.Delete(ctx, loanID); err != nil {
		return err
	}
	s.publisher.Publish(websocket.LoanDeleted(map[string]string{"id": loanID.String()}))
	return nil
}

func remarkOrDefault(remark *string) string {
	if remark == nil || strings.TrimSpace(*remark) == "" {
		return domain.NoRemarkProvided
	}
	return strings.TrimSpace(*remark)
}

// contractSnapshot freezes everything the agreement document needs.
func contractSnapshot(loan *domain.LoanApplication, customer *domain.Customer, loanType *domain.LoanType) contract.Data {
	totalFees := emi.TotalFees(loan.LoanAmount, loan.ProcessingFees, loan.InsuranceFees, loan.OtherFees)
	emiAmount := decimal.Zero
	if len(loan.Repayments) > 0 {
		emiAmount = loan.Repayments[0].EmiAmount
	}
	return contract.Data{
		LoanID:         loan.ID.String(),
		GeneratedAt:    time.Now().Format("02 Jan 2006 15:04 MST"),
		ApplicantName:  customer.ApplicantName,
		GuardianName:   customer.GuardianName,
		MobileNumber:   customer.MobileNumber,
		Address:        customer.Address(),
		PANNumber:      customer.PANNumber,
		LoanTypeName:   loanType.LoanName,
		LoanAmount:     loan.LoanAmount.StringFixed(2),
		InterestRate:   loan.InterestRate.String(),
		InterestType:   string(loan.InterestType),
		LoanDuration:   fmt.Sprintf("%d months", loan.LoanDuration),
		CollectionFreq: string(loan.CollectionFreq),
		Installments:   len(loan.Repayments),
		EmiAmount:      emiAmount.StringFixed(2),
		TotalInterest:  loan.TotalInterest.StringFixed(2),
		TotalPayable:   loan.TotalPayableAmount.StringFixed(2),
		ProcessingFees: emi.FeeAmount(loan.LoanAmount, loan.ProcessingFees).StringFixed(2),
		InsuranceFees:  emi.FeeAmount(loan.LoanAmount, loan.InsuranceFees).StringFixed(2),
		TotalFees:      totalFees.StringFixed(2),
		FirstEmiDate:   loan.FirstEmiDate.Format("02 Jan 2006"),
	}
}
