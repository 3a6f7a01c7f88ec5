package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/service"
)

// LoanTypeHandler handles loan product template HTTP requests
type LoanTypeHandler struct {
	loanTypeService *service.LoanTypeService
}

// NewLoanTypeHandler creates a new LoanTypeHandler
func NewLoanTypeHandler(loanTypeService *service.LoanTypeService) *LoanTypeHandler {
	return &LoanTypeHandler{loanTypeService: loanTypeService}
}

// FeeSpecRequest represents a fee spec in request bodies
type FeeSpecRequest struct {
	Amount       string `json:"amount"`
	IsPercentage bool   `json:"isPercentage"`
	Description  string `json:"description,omitempty"`
}

// LoanTypeRequest represents the create/update loan type request body
type LoanTypeRequest struct {
	LoanName       string           `json:"loanName"`
	Status         string           `json:"status,omitempty"`
	Description    string           `json:"description,omitempty"`
	MinAmount      string           `json:"minAmount"`
	MaxAmount      string           `json:"maxAmount"`
	InterestRate   string           `json:"interestRate"`
	InterestType   string           `json:"interestType"`
	ProcessingFees FeeSpecRequest   `json:"processingFees"`
	InsuranceFees  FeeSpecRequest   `json:"insuranceFees"`
	OtherFees      []FeeSpecRequest `json:"otherFees,omitempty"`
	LoanDuration   int32            `json:"loanDuration"`
	CollectionFreq string           `json:"collectionFreq"`
}

func parseFeeSpec(req FeeSpecRequest, field string) (domain.FeeSpec, *ValidationError) {
	if req.Amount == "" {
		return domain.FeeSpec{Amount: decimal.Zero}, nil
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return domain.FeeSpec{}, &ValidationError{Field: field, Message: "Amount must be a valid decimal number"}
	}
	return domain.FeeSpec{
		Amount:       amount,
		IsPercentage: req.IsPercentage,
		Description:  req.Description,
	}, nil
}

func (h *LoanTypeHandler) parseLoanType(c echo.Context, req LoanTypeRequest) (*domain.LoanType, error) {
	minAmount, err := decimal.NewFromString(req.MinAmount)
	if err != nil {
		return nil, NewValidationError(c, "Invalid minimum amount", []ValidationError{
			{Field: "minAmount", Message: "Must be a valid decimal number"},
		})
	}
	maxAmount, err := decimal.NewFromString(req.MaxAmount)
	if err != nil {
		return nil, NewValidationError(c, "Invalid maximum amount", []ValidationError{
			{Field: "maxAmount", Message: "Must be a valid decimal number"},
		})
	}
	rate, err := decimal.NewFromString(req.InterestRate)
	if err != nil {
		return nil, NewValidationError(c, "Invalid interest rate", []ValidationError{
			{Field: "interestRate", Message: "Must be a valid decimal number"},
		})
	}

	processing, verr := parseFeeSpec(req.ProcessingFees, "processingFees")
	if verr != nil {
		return nil, NewValidationError(c, "Invalid fee spec", []ValidationError{*verr})
	}
	insurance, verr := parseFeeSpec(req.InsuranceFees, "insuranceFees")
	if verr != nil {
		return nil, NewValidationError(c, "Invalid fee spec", []ValidationError{*verr})
	}
	var otherFees []domain.FeeSpec
	for _, spec := range req.OtherFees {
		parsed, verr := parseFeeSpec(spec, "otherFees")
		if verr != nil {
			return nil, NewValidationError(c, "Invalid fee spec", []ValidationError{*verr})
		}
		otherFees = append(otherFees, parsed)
	}

	return &domain.LoanType{
		LoanName:       req.LoanName,
		Status:         domain.LoanTypeStatus(req.Status),
		Description:    req.Description,
		MinAmount:      minAmount,
		MaxAmount:      maxAmount,
		InterestRate:   rate,
		InterestType:   domain.InterestType(req.InterestType),
		ProcessingFees: processing,
		InsuranceFees:  insurance,
		OtherFees:      otherFees,
		LoanDuration:   req.LoanDuration,
		CollectionFreq: domain.CollectionFrequency(req.CollectionFreq),
	}, nil
}

// CreateLoanType handles POST /api/v1/loan-types
func (h *LoanTypeHandler) CreateLoanType(c echo.Context) error {
	var req LoanTypeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	loanType, err := h.parseLoanType(c, req)
	if err != nil {
		return err
	}

	created, err := h.loanTypeService.Create(c.Request().Context(), loanType)
	if err != nil {
		return respondDomainError(c, err, "create loan type")
	}

	log.Info().Str("loan_type_id", created.ID.String()).Str("name", created.LoanName).Msg("Loan type created")
	return c.JSON(http.StatusCreated, created)
}

// GetLoanType handles GET /api/v1/loan-types/:id
func (h *LoanTypeHandler) GetLoanType(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan type ID", nil)
	}

	loanType, err := h.loanTypeService.Get(c.Request().Context(), id)
	if err != nil {
		return respondDomainError(c, err, "get loan type")
	}
	return c.JSON(http.StatusOK, loanType)
}

// ListLoanTypes handles GET /api/v1/loan-types
func (h *LoanTypeHandler) ListLoanTypes(c echo.Context) error {
	loanTypes, err := h.loanTypeService.List(c.Request().Context())
	if err != nil {
		return respondDomainError(c, err, "list loan types")
	}
	if loanTypes == nil {
		loanTypes = []*domain.LoanType{}
	}
	return c.JSON(http.StatusOK, loanTypes)
}

// UpdateLoanType handles PUT /api/v1/loan-types/:id
func (h *LoanTypeHandler) UpdateLoanType(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan type ID", nil)
	}

	var req LoanTypeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	loanType, err := h.parseLoanType(c, req)
	if err != nil {
		return err
	}
	loanType.ID = id

	updated, err := h.loanTypeService.Update(c.Request().Context(), loanType)
	if err != nil {
		return respondDomainError(c, err, "update loan type")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteLoanType handles DELETE /api/v1/loan-types/:id
func (h *LoanTypeHandler) DeleteLoanType(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid loan type ID", nil)
	}

	if err := h.loanTypeService.Delete(c.Request().Context(), id); err != nil {
		return respondDomainError(c, err, "delete loan type")
	}
	return c.NoContent(http.StatusNoContent)
}
