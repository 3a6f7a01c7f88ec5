package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCustomerNameRequired   = fmt.Errorf("%w: applicant name is required", ErrInvalidInput)
	ErrCustomerMobileRequired = fmt.Errorf("%w: mobile number is required", ErrInvalidInput)
	ErrCustomerStaffRequired  = fmt.Errorf("%w: manager and agent IDs are required", ErrInvalidInput)
)

// AccountStatus is the standing of a customer account.
type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountInactive AccountStatus = "INACTIVE"
)

// KYCDocuments holds the storage URLs of a customer's identity paperwork,
// captured once at onboarding.
type KYCDocuments struct {
	PANImageURL           string `json:"panImageUrl"`
	POIFrontImageURL      string `json:"poiFrontImageUrl"`
	POIBackImageURL       string `json:"poiBackImageUrl"`
	POAFrontImageURL      string `json:"poaFrontImageUrl"`
	POABackImageURL       string `json:"poaBackImageUrl"`
	ApplicantSignatureURL string `json:"applicantSignatureUrl"`
	PersonalPhotoURL      string `json:"personalPhotoUrl"`
}

// Customer is a loan applicant registered by a field agent under a manager.
type Customer struct {
	ID                uuid.UUID     `json:"id"`
	MemberID          string        `json:"memberId"`
	ApplicantName     string        `json:"applicantName"`
	GuardianName      string        `json:"guardianName"`
	MobileNumber      string        `json:"mobileNumber"`
	Email             string        `json:"email"`
	DateOfBirth       time.Time     `json:"dateOfBirth"`
	Village           string        `json:"village"`
	District          string        `json:"district"`
	PinCode           string        `json:"pinCode"`
	PANNumber         string        `json:"panNumber"`
	POIDocumentNumber string        `json:"poiDocumentNumber"`
	POADocumentNumber string        `json:"poaDocumentNumber"`
	AccountStatus     AccountStatus `json:"accountStatus"`
	PasswordHash      string        `json:"-"`
	ManagerID         uuid.UUID     `json:"managerId"`
	AgentID           uuid.UUID     `json:"agentId"`
	Documents         KYCDocuments  `json:"documents"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// Address joins the locality fields the way the contract prints them.
func (c *Customer) Address() string {
	return c.Village + ", " + c.District + ", " + c.PinCode
}

func (c *Customer) Validate() error {
	if c.ApplicantName == "" {
		return ErrCustomerNameRequired
	}
	if c.MobileNumber == "" {
		return ErrCustomerMobileRequired
	}
	if c.ManagerID == uuid.Nil || c.AgentID == uuid.Nil {
		return ErrCustomerStaffRequired
	}
	return nil
}

// CustomerFilter scopes customer listings to the requesting staff member.
type CustomerFilter struct {
	ManagerID *uuid.UUID
	AgentID   *uuid.UUID
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) (*Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]*Customer, error)
	Update(ctx context.Context, customer *Customer) (*Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}
