package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/crediflow/crediflow-backend/internal/domain"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://crediflow.app/errors/validation"
	ErrorTypeNotFound     = "https://crediflow.app/errors/not-found"
	ErrorTypeUnauthorized = "https://crediflow.app/errors/unauthorized"
	ErrorTypeForbidden    = "https://crediflow.app/errors/forbidden"
	ErrorTypeConflict     = "https://crediflow.app/errors/conflict"
	ErrorTypeInternal     = "https://crediflow.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return c.JSON(http.StatusForbidden, ProblemDetails{
		Type:     ErrorTypeForbidden,
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// respondDomainError maps the shared domain sentinels to problem responses.
// Handlers call it after handling their operation-specific errors; anything
// unmatched is logged and reported as a 500.
func respondDomainError(c echo.Context, err error, action string) error {
	switch {
	case errors.Is(err, domain.ErrLoanNotFound),
		errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrLoanTypeNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrFeeRecordNotFound),
		errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, err.Error())

	case errors.Is(err, domain.ErrStateConflict),
		errors.Is(err, domain.ErrDocumentAlreadySet),
		errors.Is(err, domain.ErrFieldVerificationDone),
		errors.Is(err, domain.ErrEmiAlreadyPaid),
		errors.Is(err, domain.ErrFeeAlreadyPaid),
		errors.Is(err, domain.ErrFeeSettledByDisbursement):
		return NewConflictError(c, err.Error())

	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrLoanAmountOutOfBounds),
		errors.Is(err, domain.ErrNegativeDisbursement),
		errors.Is(err, domain.ErrPhotoCountInvalid),
		errors.Is(err, domain.ErrInvalidCoordinates),
		errors.Is(err, domain.ErrEmiNotFound),
		errors.Is(err, domain.ErrNotImageFile),
		errors.Is(err, domain.ErrNotPDFFile):
		return NewValidationError(c, err.Error(), nil)
	}

	var dup domain.DuplicateFieldError
	if errors.As(err, &dup) {
		return NewConflictError(c, dup.Error())
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msgf("Failed to %s", action)
	return NewInternalError(c, "Failed to "+action)
}
