package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrLoanTypeNotFound  = errors.New("loan type not found")
	ErrLoanNotFound      = errors.New("loan application not found")
	ErrFeeRecordNotFound = errors.New("fee record not found for this loan")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmiNotFound       = errors.New("invalid EMI number")

	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrStateConflict is the common match target for every operation
	// attempted against a record in the wrong state.
	ErrStateConflict = errors.New("operation not allowed in current state")

	ErrLoanAmountOutOfBounds    = errors.New("loan amount out of bounds")
	ErrNegativeDisbursement     = errors.New("total fees exceed the loan amount")
	ErrDocumentAlreadySet       = errors.New("document already uploaded")
	ErrFieldVerificationDone    = errors.New("field verification already completed")
	ErrPhotoCountInvalid        = errors.New("exactly 6 house photos are required")
	ErrInvalidCoordinates       = errors.New("invalid GPS coordinates")
	ErrNotImageFile             = errors.New("only image files are allowed")
	ErrNotPDFFile               = errors.New("only PDF files are allowed")
	ErrEmiAlreadyPaid           = errors.New("EMI already paid")
	ErrFeeAlreadyPaid           = errors.New("fee already paid")
	ErrFeeSettledByDisbursement = errors.New("fees already settled via disbursement")
)

// NoRemarkProvided is stored when an approval or rejection carries no remark.
const NoRemarkProvided = "NO REMARK PROVIDED"

// TransitionError reports a lifecycle action attempted from a status that
// does not permit it. It matches ErrStateConflict under errors.Is.
type TransitionError struct {
	Action string
	Status ApplicationStatus
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed from status %s", e.Action, e.Status)
}

func (e TransitionError) Is(target error) bool {
	return target == ErrStateConflict
}

// DuplicateFieldError reports a unique-constraint violation on a customer
// field (PAN number, mobile number, email, member ID, document numbers).
type DuplicateFieldError struct {
	Field string
}

func (e DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}
