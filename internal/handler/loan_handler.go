package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/middleware"
	"github.com/crediflow/crediflow-backend/internal/service"
)

// LoanHandler handles loan application HTTP requests
type LoanHandler struct {
	loanService *service.LoanService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService *service.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// CreateLoanRequest represents the create loan request body. Duration and
// frequency are optional; when omitted the loan type's defaults apply.
type CreateLoanRequest struct {
	CustomerID         string           `json:"customerId"`
	LoanTypeID         string           `json:"loanTypeId"`
	LoanAmount         string           `json:"loanAmount"`
	LoanDuration       int32            `json:"loanDuration,omitempty"`
	CollectionFreq     string           `json:"collectionFreq,omitempty"`
	FirstEmiDate       string           `json:"firstEmiDate"`
	FeesPaymentMethod  string           `json:"feesPaymentMethod"`
	DisbursementMethod string           `json:"disbursementMethod"`
	AdditionalFees     []FeeSpecRequest `json:"additionalFees,omitempty"`
}

// CreateLoan handles POST /api/v1/loans
func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req CreateLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}
	loanTypeID, err := uuid.Parse(req.LoanTypeID)
	if err != nil {
		return NewValidationError(c, "Invalid loan type ID", nil)
	}
	amount, err := decimal.NewFromString(req.LoanAmount)
	if err != nil {
		return NewValidationError(c, "Invalid loan amount", []ValidationError{
			{Field: "loanAmount", Message: "Must be a valid decimal number"},
		})
	}
	firstEmiDate, err := time.Parse("2006-01-02", req.FirstEmiDate)
	if err != nil {
		return NewValidationError(c, "Invalid first EMI date", []ValidationError{
			{Field: "firstEmiDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	var additionalFees []domain.FeeSpec
	for _, spec := range req.AdditionalFees {
		parsed, verr := parseFeeSpec(spec, "additionalFees")
		if verr != nil {
			return NewValidationError(c, "Invalid fee spec", []ValidationError{*verr})
		}
		additionalFees = append(additionalFees, parsed)
	}

	loan, err := h.loanService.Create(c.Request().Context(), service.CreateLoanInput{
		CustomerID:         customerID,
		LoanTypeID:         loanTypeID,
		AgentID:            middleware.GetUserID(c),
		LoanAmount:         amount,
		LoanDuration:       req.LoanDuration,
		CollectionFreq:     domain.CollectionFrequency(req.CollectionFreq),
		FirstEmiDate:       firstEmiDate,
		FeesPaymentMethod:  domain.FeesPaymentMethod(req.FeesPaymentMethod),
		DisbursementMethod: req.DisbursementMethod,
		AdditionalFees:     additionalFees,
	})
	if err != nil {
		return respondDomainError(c, err, "create loan")
	}

	log.Info().Str("loan_id", loan.ID.String()).Str("customer_id", customerID.String()).Msg("Loan application submitted")
	return c.JSON(http.StatusCreated, loan)
}

// GetLoan handles GET /api/v1/loans/:id
func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	loan, err := h.loanService.Get(c.Request().Context(), id)
	if err != nil {
		return respondDomainError(c, err, "get loan")
	}
	return c.JSON(http.StatusOK, loan)
}

// ListLoans handles GET /api/v1/loans
func (h *LoanHandler) ListLoans(c echo.Context) error {
	loans, err := h.loanService.List(c.Request().Context())
	if err != nil {
		return respondDomainError(c, err, "list loans")
	}
	if loans == nil {
		loans = []*domain.LoanApplication{}
	}
	return c.JSON(http.StatusOK, loans)
}

// ScheduleResponse is the repayment view of a loan: the schedule plus the
// running balance, without the rest of the application record.
type ScheduleResponse struct {
	LoanID          uuid.UUID                `json:"loanId"`
	Status          domain.ApplicationStatus `json:"status"`
	RemainingAmount decimal.Decimal          `json:"remainingAmount"`
	Repayments      []domain.EmiRecord       `json:"repayments"`
}

func scheduleView(loan *domain.LoanApplication) ScheduleResponse {
	return ScheduleResponse{
		LoanID:          loan.ID,
		Status:          loan.Status,
		RemainingAmount: loan.RemainingAmount,
		Repayments:      loan.Repayments,
	}
}

// GetSchedule handles GET /api/v1/loans/:id/schedule
func (h *LoanHandler) GetSchedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	loan, err := h.loanService.Get(c.Request().Context(), id)
	if err != nil {
		return respondDomainError(c, err, "get schedule")
	}
	return c.JSON(http.StatusOK, scheduleView(loan))
}

// ListSchedules handles GET /api/v1/repayments
func (h *LoanHandler) ListSchedules(c echo.Context) error {
	loans, err := h.loanService.List(c.Request().Context())
	if err != nil {
		return respondDomainError(c, err, "list schedules")
	}

	views := make([]ScheduleResponse, 0, len(loans))
	for _, loan := range loans {
		views = append(views, scheduleView(loan))
	}
	return c.JSON(http.StatusOK, views)
}

// CallVerify handles POST /api/v1/loans/:id/call-verify
func (h *LoanHandler) CallVerify(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	loan, err := h.loanService.MarkCallVerified(c.Request().Context(), id, middleware.GetUserID(c))
	if err != nil {
		return respondDomainError(c, err, "mark call verified")
	}

	log.Info().Str("loan_id", id.String()).Msg("Loan call verified")
	return c.JSON(http.StatusOK, loan)
}

// GenerateContract handles POST /api/v1/loans/:id/contract
func (h *LoanHandler) GenerateContract(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	loan, err := h.loanService.GenerateContract(c.Request().Context(), id, middleware.GetUserID(c))
	if err != nil {
		return respondDomainError(c, err, "generate contract")
	}

	log.Info().Str("loan_id", id.String()).Msg("Contract generated")
	return c.JSON(http.StatusOK, loan)
}

// UploadSignedContract handles POST /api/v1/loans/:id/signed-contract. The
// request is multipart with a single "contract" PDF file.
func (h *LoanHandler) UploadSignedContract(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	file, err := formFile(c, "contract")
	if err != nil || file == nil {
		return NewValidationError(c, "Missing contract file", []ValidationError{
			{Field: "contract", Message: "A signed contract PDF is required"},
		})
	}

	loan, err := h.loanService.UploadSignedContract(c.Request().Context(), id, *file, middleware.GetUserID(c))
	if err != nil {
		return respondDomainError(c, err, "upload signed contract")
	}

	log.Info().Str("loan_id", id.String()).Msg("Signed contract uploaded")
	return c.JSON(http.StatusOK, loan)
}

// FieldVerify handles POST /api/v1/loans/:id/field-verify: a multipart
// request carrying exactly six "photos" files plus latitude and longitude.
func (h *LoanHandler) FieldVerify(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	latitude, err := strconv.ParseFloat(c.FormValue("latitude"), 64)
	if err != nil {
		return NewValidationError(c, "Invalid latitude", []ValidationError{
			{Field: "latitude", Message: "Must be a number"},
		})
	}
	longitude, err := strconv.ParseFloat(c.FormValue("longitude"), 64)
	if err != nil {
		return NewValidationError(c, "Invalid longitude", []ValidationError{
			{Field: "longitude", Message: "Must be a number"},
		})
	}

	photos, err := formFiles(c, "photos")
	if err != nil {
		return NewValidationError(c, "Invalid photo upload", nil)
	}

	loan, err := h.loanService.FieldVerify(c.Request().Context(), id, photos, latitude, longitude, middleware.GetUserID(c))
	if err != nil {
		return respondDomainError(c, err, "field verify")
	}

	log.Info().Str("loan_id", id.String()).Msg("Loan field verified")
	return c.JSON(http.StatusOK, loan)
}

// RemarkRequest represents an optional remark body for approve and reject
type RemarkRequest struct {
	Remark *string `json:"remark,omitempty"`
}

// Approve handles POST /api/v1/loans/:id/approve
func (h *LoanHandler) Approve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	var req RemarkRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	loan, err := h.loanService.AdminApprove(c.Request().Context(), id, middleware.GetUserID(c), req.Remark)
	if err != nil {
		return respondDomainError(c, err, "approve loan")
	}

	log.Info().Str("loan_id", id.String()).Msg("Loan approved")
	return c.JSON(http.StatusOK, loan)
}

// Reject handles POST /api/v1/loans/:id/reject
func (h *LoanHandler) Reject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	var req RemarkRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	loan, err := h.loanService.Reject(c.Request().Context(), id, req.Remark)
	if err != nil {
		return respondDomainError(c, err, "reject loan")
	}

	log.Info().Str("loan_id", id.String()).Msg("Loan rejected")
	return c.JSON(http.StatusOK, loan)
}

// DisburseResponse pairs the updated loan with its fee ledger row
type DisburseResponse struct {
	Loan *domain.LoanApplication `json:"loan"`
	Fees *domain.LoanFees        `json:"fees"`
}

// Disburse handles POST /api/v1/loans/:id/disburse
func (h *LoanHandler) Disburse(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	loan, fees, err := h.loanService.Disburse(c.Request().Context(), id)
	if err != nil {
		return respondDomainError(c, err, "disburse loan")
	}

	log.Info().
		Str("loan_id", id.String()).
		Str("disbursed_amount", loan.DisbursedAmount.StringFixed(2)).
		Bool("fees_deducted", fees.Paid).
		Msg("Loan disbursed")
	return c.JSON(http.StatusOK, DisburseResponse{Loan: loan, Fees: fees})
}

// Close handles POST /api/v1/loans/:id/close
func (h *LoanHandler) Close(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	loan, err := h.loanService.Close(c.Request().Context(), id)
	if err != nil {
		return respondDomainError(c, err, "close loan")
	}

	log.Info().Str("loan_id", id.String()).Msg("Loan closed")
	return c.JSON(http.StatusOK, loan)
}

// PayEmi handles POST /api/v1/loans/:id/emis/:emiNumber/pay. The request is
// multipart: paidAmount, paymentMethod, transactionId fields plus an
// optional "proof" image.
func (h *LoanHandler) PayEmi(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}
	emiNumber, err := strconv.Atoi(c.Param("emiNumber"))
	if err != nil {
		return NewValidationError(c, "Invalid EMI number", nil)
	}
	paidAmount, err := decimal.NewFromString(c.FormValue("paidAmount"))
	if err != nil {
		return NewValidationError(c, "Invalid paid amount", []ValidationError{
			{Field: "paidAmount", Message: "Must be a valid decimal number"},
		})
	}

	proof, err := formFile(c, "proof")
	if err != nil {
		return NewValidationError(c, "Invalid proof upload", nil)
	}

	loan, err := h.loanService.PayEmi(c.Request().Context(), service.PayEmiInput{
		LoanID:        id,
		EmiNumber:     emiNumber,
		PaidAmount:    paidAmount,
		PaymentMethod: c.FormValue("paymentMethod"),
		TransactionID: c.FormValue("transactionId"),
		Proof:         proof,
	})
	if err != nil {
		return respondDomainError(c, err, "record EMI payment")
	}

	log.Info().
		Str("loan_id", id.String()).
		Int("emi_number", emiNumber).
		Str("paid_amount", paidAmount.StringFixed(2)).
		Msg("EMI payment recorded")
	return c.JSON(http.StatusOK, loan)
}

// AddPenaltyRequest represents the add penalty request body
type AddPenaltyRequest struct {
	PenaltyAmount string `json:"penaltyAmount"`
}

// AddPenalty handles POST /api/v1/loans/:id/emis/:emiNumber/penalty
func (h *LoanHandler) AddPenalty(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}
	emiNumber, err := strconv.Atoi(c.Param("emiNumber"))
	if err != nil {
		return NewValidationError(c, "Invalid EMI number", nil)
	}

	var req AddPenaltyRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	penalty, err := decimal.NewFromString(req.PenaltyAmount)
	if err != nil {
		return NewValidationError(c, "Invalid penalty amount", []ValidationError{
			{Field: "penaltyAmount", Message: "Must be a valid decimal number"},
		})
	}

	loan, err := h.loanService.AddPenalty(c.Request().Context(), id, emiNumber, penalty)
	if err != nil {
		return respondDomainError(c, err, "add penalty")
	}

	log.Info().
		Str("loan_id", id.String()).
		Int("emi_number", emiNumber).
		Str("penalty", penalty.StringFixed(2)).
		Msg("Penalty added")
	return c.JSON(http.StatusOK, loan)
}

// DeleteLoan handles DELETE /api/v1/loans/:id
func (h *LoanHandler) DeleteLoan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	if err := h.loanService.Delete(c.Request().Context(), id); err != nil {
		return respondDomainError(c, err, "delete loan")
	}

	log.Info().Str("loan_id", id.String()).Msg("Loan deleted")
	return c.NoContent(http.StatusNoContent)
}
