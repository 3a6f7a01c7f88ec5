package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/middleware"
	"github.com/crediflow/crediflow-backend/internal/service"
)

// FeeHandler handles loan fee ledger HTTP requests
type FeeHandler struct {
	feeService *service.LoanFeeService
}

// NewFeeHandler creates a new FeeHandler
func NewFeeHandler(feeService *service.LoanFeeService) *FeeHandler {
	return &FeeHandler{feeService: feeService}
}

// ListFees handles GET /api/v1/fees. Pass ?unpaid=true to list only
// outstanding fee records.
func (h *FeeHandler) ListFees(c echo.Context) error {
	unpaidOnly := c.QueryParam("unpaid") == "true"

	fees, err := h.feeService.List(c.Request().Context(), unpaidOnly)
	if err != nil {
		return respondDomainError(c, err, "list fees")
	}
	if fees == nil {
		fees = []*domain.LoanFees{}
	}
	return c.JSON(http.StatusOK, fees)
}

// GetLoanFees handles GET /api/v1/loans/:id/fees
func (h *FeeHandler) GetLoanFees(c echo.Context) error {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	fees, err := h.feeService.GetByLoan(c.Request().Context(), loanID)
	if err != nil {
		return respondDomainError(c, err, "get loan fees")
	}
	return c.JSON(http.StatusOK, fees)
}

// CompleteFeePayment handles POST /api/v1/fees/:id/complete. The request is
// multipart: loanId, paymentMethod, transactionId fields plus an optional
// "proof" image.
func (h *FeeHandler) CompleteFeePayment(c echo.Context) error {
	feeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid fee ID", nil)
	}
	loanID, err := uuid.Parse(c.FormValue("loanId"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", []ValidationError{
			{Field: "loanId", Message: "Must be a valid UUID"},
		})
	}

	proof, err := formFile(c, "proof")
	if err != nil {
		return NewValidationError(c, "Invalid proof upload", nil)
	}

	fees, err := h.feeService.CompleteFeePayment(c.Request().Context(), service.CompleteFeePaymentInput{
		FeeID:         feeID,
		LoanID:        loanID,
		PaymentMethod: c.FormValue("paymentMethod"),
		TransactionID: c.FormValue("transactionId"),
		CollectedBy:   middleware.GetUserID(c),
		Proof:         proof,
	})
	if err != nil {
		return respondDomainError(c, err, "complete fee payment")
	}

	log.Info().
		Str("fee_id", feeID.String()).
		Str("loan_id", loanID.String()).
		Str("amount", fees.Amount.StringFixed(2)).
		Msg("Fee payment collected")
	return c.JSON(http.StatusOK, fees)
}
