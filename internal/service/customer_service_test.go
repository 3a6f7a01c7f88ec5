package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/testutil"
)

func newCustomerFixture() (*CustomerService, *testutil.MockCustomerRepository, *testutil.MockStaffUserRepository, *testutil.MockObjectRepository, *testutil.MockPublisher) {
	customers := testutil.NewMockCustomerRepository()
	staff := testutil.NewMockStaffUserRepository()
	store := testutil.NewMockObjectRepository()
	pub := testutil.NewMockPublisher()
	svc := NewCustomerService(customers, staff, NewDocumentService(store), pub)
	return svc, customers, staff, store, pub
}

func validCustomer(managerID, agentID uuid.UUID) *domain.Customer {
	return &domain.Customer{
		ApplicantName: "Lakshmi Devi",
		GuardianName:  "Raju Devi",
		MobileNumber:  "9000000001",
		Village:       "Kodambakkam",
		District:      "Chennai",
		PinCode:       "600024",
		ManagerID:     managerID,
		AgentID:       agentID,
	}
}

func TestCustomerCreate_HashesPasswordAndStoresKYC(t *testing.T) {
	svc, _, staff, store, pub := newCustomerFixture()
	manager := &domain.StaffUser{ID: uuid.New(), Role: domain.RoleManager, Email: "m@x"}
	agent := &domain.StaffUser{ID: uuid.New(), Role: domain.RoleAgent, Email: "a@x"}
	staff.AddUser(manager)
	staff.AddUser(agent)

	pan := UploadFile{Data: jpegBytes(32), Filename: "pan.jpg", ContentType: "image/jpeg"}
	created, err := svc.Create(context.Background(), validCustomer(manager.ID, agent.ID), "portal-pass", KYCUploads{PANImage: &pan})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.PasswordHash == "" || created.PasswordHash == "portal-pass" {
		t.Errorf("Expected hashed password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("portal-pass")); err != nil {
		t.Errorf("Expected hash to verify: %v", err)
	}
	if created.Documents.PANImageURL == "" {
		t.Errorf("Expected PAN image URL")
	}
	if !strings.Contains(created.Documents.PANImageURL, created.ID.String()) {
		t.Errorf("Expected KYC path scoped to customer, got %s", created.Documents.PANImageURL)
	}
	if len(store.Objects) != 1 {
		t.Errorf("Expected one stored object, got %d", len(store.Objects))
	}
	if created.AccountStatus != domain.AccountActive {
		t.Errorf("Expected default ACTIVE status")
	}
	if got := pub.EventTypes(); len(got) != 1 || got[0] != "customer.created" {
		t.Errorf("Expected one customer.created event, got %v", got)
	}
}

func TestCustomerCreate_UnknownStaff(t *testing.T) {
	svc, _, staff, _, _ := newCustomerFixture()
	manager := &domain.StaffUser{ID: uuid.New(), Role: domain.RoleManager, Email: "m@x"}
	staff.AddUser(manager)

	_, err := svc.Create(context.Background(), validCustomer(manager.ID, uuid.New()), "", KYCUploads{})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound for unknown agent, got %v", err)
	}
}

func TestCustomerCreate_ValidationFails(t *testing.T) {
	svc, _, _, _, _ := newCustomerFixture()

	customer := validCustomer(uuid.New(), uuid.New())
	customer.ApplicantName = ""
	_, err := svc.Create(context.Background(), customer, "", KYCUploads{})
	if !errors.Is(err, domain.ErrCustomerNameRequired) {
		t.Errorf("Expected ErrCustomerNameRequired, got %v", err)
	}
}

func TestCustomerList_ScopedByRole(t *testing.T) {
	svc, customers, staff, _, _ := newCustomerFixture()
	manager := &domain.StaffUser{ID: uuid.New(), Role: domain.RoleManager, Email: "m@x"}
	agent := &domain.StaffUser{ID: uuid.New(), Role: domain.RoleAgent, Email: "a@x"}
	admin := &domain.StaffUser{ID: uuid.New(), Role: domain.RoleAdmin, Email: "ad@x"}
	staff.AddUser(manager)
	staff.AddUser(agent)
	staff.AddUser(admin)

	mine := validCustomer(manager.ID, agent.ID)
	mine.ID = uuid.New()
	other := validCustomer(uuid.New(), uuid.New())
	other.ID = uuid.New()
	other.MobileNumber = "9000000002"
	customers.AddCustomer(mine)
	customers.AddCustomer(other)

	all, err := svc.List(context.Background(), admin)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected admin to see 2 customers, got %d", len(all))
	}

	scoped, err := svc.List(context.Background(), manager)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != mine.ID {
		t.Errorf("Expected manager to see only their customer")
	}

	agentScoped, err := svc.List(context.Background(), agent)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(agentScoped) != 1 || agentScoped[0].ID != mine.ID {
		t.Errorf("Expected agent to see only their customer")
	}
}

func TestSetAccountStatus_Toggles(t *testing.T) {
	svc, customers, _, _, pub := newCustomerFixture()
	customer := validCustomer(uuid.New(), uuid.New())
	customer.ID = uuid.New()
	customer.AccountStatus = domain.AccountActive
	customers.AddCustomer(customer)

	updated, err := svc.SetAccountStatus(context.Background(), customer.ID, domain.AccountInactive)
	if err != nil {
		t.Fatalf("SetAccountStatus failed: %v", err)
	}
	if updated.AccountStatus != domain.AccountInactive {
		t.Errorf("Expected INACTIVE, got %s", updated.AccountStatus)
	}
	if got := pub.EventTypes(); len(got) != 1 || got[0] != "customer.updated" {
		t.Errorf("Expected customer.updated event, got %v", got)
	}
}
