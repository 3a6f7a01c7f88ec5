package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/websocket"
)

// CustomerService manages customer onboarding and KYC documents.
type CustomerService struct {
	customerRepo domain.CustomerRepository
	staffRepo    domain.StaffUserRepository
	docs         *DocumentService
	publisher    websocket.EventPublisher
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo domain.CustomerRepository, staffRepo domain.StaffUserRepository, docs *DocumentService, publisher websocket.EventPublisher) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		staffRepo:    staffRepo,
		docs:         docs,
		publisher:    publisher,
	}
}

// KYCUploads carries the identity images captured at onboarding, keyed the
// same way KYCDocuments stores their URLs.
type KYCUploads struct {
	PANImage           *UploadFile
	POIFrontImage      *UploadFile
	POIBackImage       *UploadFile
	POAFrontImage      *UploadFile
	POABackImage       *UploadFile
	ApplicantSignature *UploadFile
	PersonalPhoto      *UploadFile
}

// Create registers a customer under a manager and agent, hashing the
// portal password and storing whichever KYC images were supplied.
func (s *CustomerService) Create(ctx context.Context, customer *domain.Customer, password string, kyc KYCUploads) (*domain.Customer, error) {
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.staffRepo.GetByID(ctx, customer.ManagerID); err != nil {
		return nil, err
	}
	if _, err := s.staffRepo.GetByID(ctx, customer.AgentID); err != nil {
		return nil, err
	}

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		customer.PasswordHash = string(hash)
	}

	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	if customer.AccountStatus == "" {
		customer.AccountStatus = domain.AccountActive
	}

	if err := s.uploadKYC(ctx, customer, kyc); err != nil {
		return nil, err
	}

	created, err := s.customerRepo.Create(ctx, customer)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(websocket.CustomerCreated(created))
	return created, nil
}

// uploadKYC stores the supplied images and fills the matching URL slots.
func (s *CustomerService) uploadKYC(ctx context.Context, customer *domain.Customer, kyc KYCUploads) error {
	slots := []struct {
		file *UploadFile
		name string
		dest *string
	}{
		{kyc.PANImage, "pan", &customer.Documents.PANImageURL},
		{kyc.POIFrontImage, "poi_front", &customer.Documents.POIFrontImageURL},
		{kyc.POIBackImage, "poi_back", &customer.Documents.POIBackImageURL},
		{kyc.POAFrontImage, "poa_front", &customer.Documents.POAFrontImageURL},
		{kyc.POABackImage, "poa_back", &customer.Documents.POABackImageURL},
		{kyc.ApplicantSignature, "signature", &customer.Documents.ApplicantSignatureURL},
		{kyc.PersonalPhoto, "photo", &customer.Documents.PersonalPhotoURL},
	}
	for _, slot := range slots {
		if slot.file == nil {
			continue
		}
		url, err := s.docs.UploadImage(ctx, KYCPath(customer.ID, slot.name), slot.file.Data, slot.file.Filename, slot.file.ContentType)
		if err != nil {
			return err
		}
		*slot.dest = url
	}
	return nil
}

// Get retrieves a customer by ID
func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

// List retrieves customers visible to the requesting staff member: admins
// see everyone, managers their own book, agents their own registrations.
func (s *CustomerService) List(ctx context.Context, requester *domain.StaffUser) ([]*domain.Customer, error) {
	var filter domain.CustomerFilter
	switch requester.Role {
	case domain.RoleManager:
		filter.ManagerID = &requester.ID
	case domain.RoleAgent:
		filter.AgentID = &requester.ID
	}
	return s.customerRepo.List(ctx, filter)
}

// Update updates a customer's profile fields
func (s *CustomerService) Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.customerRepo.Update(ctx, customer)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(websocket.CustomerUpdated(updated))
	return updated, nil
}

// SetAccountStatus activates or deactivates a customer account
func (s *CustomerService) SetAccountStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.AccountStatus = status
	updated, err := s.customerRepo.Update(ctx, customer)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(websocket.CustomerUpdated(updated))
	return updated, nil
}

// Delete removes a customer
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.customerRepo.Delete(ctx, id)
}
