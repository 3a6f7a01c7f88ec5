package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/middleware"
	"github.com/crediflow/crediflow-backend/internal/service"
)

// CustomerHandler handles customer HTTP requests
type CustomerHandler struct {
	customerService *service.CustomerService
	staffService    *service.StaffService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *service.CustomerService, staffService *service.StaffService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, staffService: staffService}
}

// CreateCustomer handles POST /api/v1/customers. The request is multipart:
// profile fields plus the optional KYC image files.
func (h *CustomerHandler) CreateCustomer(c echo.Context) error {
	dob, err := time.Parse("2006-01-02", c.FormValue("dateOfBirth"))
	if err != nil {
		return NewValidationError(c, "Invalid date of birth", []ValidationError{
			{Field: "dateOfBirth", Message: "Must be in YYYY-MM-DD format"},
		})
	}
	managerID, err := uuid.Parse(c.FormValue("managerId"))
	if err != nil {
		return NewValidationError(c, "Invalid manager ID", nil)
	}
	agentID, err := uuid.Parse(c.FormValue("agentId"))
	if err != nil {
		return NewValidationError(c, "Invalid agent ID", nil)
	}

	customer := &domain.Customer{
		MemberID:          c.FormValue("memberId"),
		ApplicantName:     c.FormValue("applicantName"),
		GuardianName:      c.FormValue("guardianName"),
		MobileNumber:      c.FormValue("mobileNumber"),
		Email:             c.FormValue("email"),
		DateOfBirth:       dob,
		Village:           c.FormValue("village"),
		District:          c.FormValue("district"),
		PinCode:           c.FormValue("pinCode"),
		PANNumber:         c.FormValue("panNumber"),
		POIDocumentNumber: c.FormValue("poiDocumentNumber"),
		POADocumentNumber: c.FormValue("poaDocumentNumber"),
		ManagerID:         managerID,
		AgentID:           agentID,
	}

	kyc, err := h.readKYCUploads(c)
	if err != nil {
		return NewValidationError(c, "Invalid KYC upload", nil)
	}

	created, err := h.customerService.Create(c.Request().Context(), customer, c.FormValue("password"), kyc)
	if err != nil {
		return respondDomainError(c, err, "create customer")
	}

	log.Info().Str("customer_id", created.ID.String()).Str("name", created.ApplicantName).Msg("Customer created")
	return c.JSON(http.StatusCreated, created)
}

func (h *CustomerHandler) readKYCUploads(c echo.Context) (service.KYCUploads, error) {
	var kyc service.KYCUploads
	fields := []struct {
		name string
		dest **service.UploadFile
	}{
		{"panImage", &kyc.PANImage},
		{"poiFrontImage", &kyc.POIFrontImage},
		{"poiBackImage", &kyc.POIBackImage},
		{"poaFrontImage", &kyc.POAFrontImage},
		{"poaBackImage", &kyc.POABackImage},
		{"applicantSignature", &kyc.ApplicantSignature},
		{"personalPhoto", &kyc.PersonalPhoto},
	}
	for _, field := range fields {
		file, err := formFile(c, field.name)
		if err != nil {
			return kyc, err
		}
		*field.dest = file
	}
	return kyc, nil
}

// GetCustomer handles GET /api/v1/customers/:id
func (h *CustomerHandler) GetCustomer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	customer, err := h.customerService.Get(c.Request().Context(), id)
	if err != nil {
		return respondDomainError(c, err, "get customer")
	}
	return c.JSON(http.StatusOK, customer)
}

// ListCustomers handles GET /api/v1/customers, scoped to the requester's role.
func (h *CustomerHandler) ListCustomers(c echo.Context) error {
	requester, err := h.staffService.Get(c.Request().Context(), middleware.GetUserID(c))
	if err != nil {
		return respondDomainError(c, err, "list customers")
	}

	customers, err := h.customerService.List(c.Request().Context(), requester)
	if err != nil {
		return respondDomainError(c, err, "list customers")
	}
	if customers == nil {
		customers = []*domain.Customer{}
	}
	return c.JSON(http.StatusOK, customers)
}

// UpdateCustomerRequest represents the update customer request body
type UpdateCustomerRequest struct {
	ApplicantName string `json:"applicantName"`
	GuardianName  string `json:"guardianName"`
	MobileNumber  string `json:"mobileNumber"`
	Email         string `json:"email"`
	Village       string `json:"village"`
	District      string `json:"district"`
	PinCode       string `json:"pinCode"`
}

// UpdateCustomer handles PUT /api/v1/customers/:id
func (h *CustomerHandler) UpdateCustomer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	var req UpdateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	customer, err := h.customerService.Get(c.Request().Context(), id)
	if err != nil {
		return respondDomainError(c, err, "update customer")
	}

	if req.ApplicantName != "" {
		customer.ApplicantName = req.ApplicantName
	}
	if req.GuardianName != "" {
		customer.GuardianName = req.GuardianName
	}
	if req.MobileNumber != "" {
		customer.MobileNumber = req.MobileNumber
	}
	if req.Email != "" {
		customer.Email = req.Email
	}
	if req.Village != "" {
		customer.Village = req.Village
	}
	if req.District != "" {
		customer.District = req.District
	}
	if req.PinCode != "" {
		customer.PinCode = req.PinCode
	}

	updated, err := h.customerService.Update(c.Request().Context(), customer)
	if err != nil {
		return respondDomainError(c, err, "update customer")
	}
	return c.JSON(http.StatusOK, updated)
}

// SetAccountStatusRequest represents the account status patch body
type SetAccountStatusRequest struct {
	AccountStatus string `json:"accountStatus"`
}

// SetAccountStatus handles PATCH /api/v1/customers/:id/account-status
func (h *CustomerHandler) SetAccountStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	var req SetAccountStatusRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	status := domain.AccountStatus(req.AccountStatus)
	if status != domain.AccountActive && status != domain.AccountInactive {
		return NewValidationError(c, "Invalid account status", []ValidationError{
			{Field: "accountStatus", Message: "Must be ACTIVE or INACTIVE"},
		})
	}

	updated, err := h.customerService.SetAccountStatus(c.Request().Context(), id, status)
	if err != nil {
		return respondDomainError(c, err, "update account status")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteCustomer handles DELETE /api/v1/customers/:id
func (h *CustomerHandler) DeleteCustomer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	if err := h.customerService.Delete(c.Request().Context(), id); err != nil {
		return respondDomainError(c, err, "delete customer")
	}
	return c.NoContent(http.StatusNoContent)
}
