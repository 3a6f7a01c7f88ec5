// Package testutil provides in-memory repository and collaborator mocks
// shared by the service tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crediflow/crediflow-backend/internal/contract"
	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/websocket"
)

// MockStaffUserRepository is a mock implementation of domain.StaffUserRepository
type MockStaffUserRepository struct {
	ByID    map[uuid.UUID]*domain.StaffUser
	ByEmail map[string]*domain.StaffUser
}

// NewMockStaffUserRepository creates a new MockStaffUserRepository
func NewMockStaffUserRepository() *MockStaffUserRepository {
	return &MockStaffUserRepository{
		ByID:    make(map[uuid.UUID]*domain.StaffUser),
		ByEmail: make(map[string]*domain.StaffUser),
	}
}

// AddUser adds a staff user to the mock repository (helper for tests)
func (m *MockStaffUserRepository) AddUser(user *domain.StaffUser) {
	m.ByID[user.ID] = user
	m.ByEmail[user.Email] = user
}

// Create creates a new staff user
func (m *MockStaffUserRepository) Create(_ context.Context, user *domain.StaffUser) (*domain.StaffUser, error) {
	if _, ok := m.ByEmail[user.Email]; ok {
		return nil, domain.DuplicateFieldError{Field: "email"}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.AddUser(user)
	return user, nil
}

// GetByID retrieves a staff user by ID
func (m *MockStaffUserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.StaffUser, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a staff user by email
func (m *MockStaffUserRepository) GetByEmail(_ context.Context, email string) (*domain.StaffUser, error) {
	if user, ok := m.ByEmail[email]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// ListByRole retrieves staff users with the given role
func (m *MockStaffUserRepository) ListByRole(_ context.Context, role domain.Role) ([]*domain.StaffUser, error) {
	var users []*domain.StaffUser
	for _, user := range m.ByID {
		if user.Role == role {
			users = append(users, user)
		}
	}
	return users, nil
}

// Delete removes a staff user
func (m *MockStaffUserRepository) Delete(_ context.Context, id uuid.UUID) error {
	user, ok := m.ByID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(m.ByID, id)
	delete(m.ByEmail, user.Email)
	return nil
}

// MockCustomerRepository is a mock implementation of domain.CustomerRepository
type MockCustomerRepository struct {
	Customers map[uuid.UUID]*domain.Customer
}

// NewMockCustomerRepository creates a new MockCustomerRepository
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{Customers: make(map[uuid.UUID]*domain.Customer)}
}

// AddCustomer adds a customer to the mock repository (helper for tests)
func (m *MockCustomerRepository) AddCustomer(customer *domain.Customer) {
	m.Customers[customer.ID] = customer
}

// Create creates a new customer
func (m *MockCustomerRepository) Create(_ context.Context, customer *domain.Customer) (*domain.Customer, error) {
	for _, existing := range m.Customers {
		if existing.MobileNumber == customer.MobileNumber {
			return nil, domain.DuplicateFieldError{Field: "mobile number"}
		}
	}
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	m.Customers[customer.ID] = customer
	return customer, nil
}

// GetByID retrieves a customer by ID
func (m *MockCustomerRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	if customer, ok := m.Customers[id]; ok {
		return customer, nil
	}
	return nil, domain.ErrCustomerNotFound
}

// List retrieves customers matching the filter
func (m *MockCustomerRepository) List(_ context.Context, filter domain.CustomerFilter) ([]*domain.Customer, error) {
	var out []*domain.Customer
	for _, customer := range m.Customers {
		if filter.ManagerID != nil && customer.ManagerID != *filter.ManagerID {
			continue
		}
		if filter.AgentID != nil && customer.AgentID != *filter.AgentID {
			continue
		}
		out = append(out, customer)
	}
	return out, nil
}

// Update updates an existing customer
func (m *MockCustomerRepository) Update(_ context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if _, ok := m.Customers[customer.ID]; !ok {
		return nil, domain.ErrCustomerNotFound
	}
	m.Customers[customer.ID] = customer
	return customer, nil
}

// Delete removes a customer
func (m *MockCustomerRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.Customers[id]; !ok {
		return domain.ErrCustomerNotFound
	}
	delete(m.Customers, id)
	return nil
}

// Count returns the number of customers
func (m *MockCustomerRepository) Count(_ context.Context) (int64, error) {
	return int64(len(m.Customers)), nil
}

// MockLoanTypeRepository is a mock implementation of domain.LoanTypeRepository
type MockLoanTypeRepository struct {
	LoanTypes map[uuid.UUID]*domain.LoanType
}

// NewMockLoanTypeRepository creates a new MockLoanTypeRepository
func NewMockLoanTypeRepository() *MockLoanTypeRepository {
	return &MockLoanTypeRepository{LoanTypes: make(map[uuid.UUID]*domain.LoanType)}
}

// AddLoanType adds a loan type to the mock repository (helper for tests)
func (m *MockLoanTypeRepository) AddLoanType(loanType *domain.LoanType) {
	m.LoanTypes[loanType.ID] = loanType
}

// Create creates a new loan type
func (m *MockLoanTypeRepository) Create(_ context.Context, loanType *domain.LoanType) (*domain.LoanType, error) {
	if loanType.ID == uuid.Nil {
		loanType.ID = uuid.New()
	}
	m.LoanTypes[loanType.ID] = loanType
	return loanType, nil
}

// GetByID retrieves a loan type by ID
func (m *MockLoanTypeRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.LoanType, error) {
	if loanType, ok := m.LoanTypes[id]; ok {
		return loanType, nil
	}
	return nil, domain.ErrLoanTypeNotFound
}

// List retrieves all loan types
func (m *MockLoanTypeRepository) List(_ context.Context) ([]*domain.LoanType, error) {
	var out []*domain.LoanType
	for _, loanType := range m.LoanTypes {
		out = append(out, loanType)
	}
	return out, nil
}

// Update updates an existing loan type
func (m *MockLoanTypeRepository) Update(_ context.Context, loanType *domain.LoanType) (*domain.LoanType, error) {
	if _, ok := m.LoanTypes[loanType.ID]; !ok {
		return nil, domain.ErrLoanTypeNotFound
	}
	m.LoanTypes[loanType.ID] = loanType
	return loanType, nil
}

// Delete removes a loan type
func (m *MockLoanTypeRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.LoanTypes[id]; !ok {
		return domain.ErrLoanTypeNotFound
	}
	delete(m.LoanTypes, id)
	return nil
}

// MockLoanApplicationRepository is a mock implementation of
// domain.LoanApplicationRepository. UpdateWithLock and Disburse mirror the
// real transaction behavior: mutate runs on a copy and is only persisted
// when it returns nil.
type MockLoanApplicationRepository struct {
	mu    sync.Mutex
	Loans map[uuid.UUID]*domain.LoanApplication
	Fees  *MockLoanFeesRepository
}

// NewMockLoanApplicationRepository creates a new MockLoanApplicationRepository
func NewMockLoanApplicationRepository(fees *MockLoanFeesRepository) *MockLoanApplicationRepository {
	return &MockLoanApplicationRepository{
		Loans: make(map[uuid.UUID]*domain.LoanApplication),
		Fees:  fees,
	}
}

// AddLoan adds a loan to the mock repository (helper for tests)
func (m *MockLoanApplicationRepository) AddLoan(loan *domain.LoanApplication) {
	m.Loans[loan.ID] = loan
}

// Create creates a new loan application
func (m *MockLoanApplicationRepository) Create(_ context.Context, loan *domain.LoanApplication) (*domain.LoanApplication, error) {
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}
	m.Loans[loan.ID] = loan
	return loan, nil
}

// GetByID retrieves a loan application by ID
func (m *MockLoanApplicationRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	if loan, ok := m.Loans[id]; ok {
		return loan, nil
	}
	return nil, domain.ErrLoanNotFound
}

// List retrieves all loan applications
func (m *MockLoanApplicationRepository) List(_ context.Context) ([]*domain.LoanApplication, error) {
	var out []*domain.LoanApplication
	for _, loan := range m.Loans {
		out = append(out, loan)
	}
	return out, nil
}

// UpdateWithLock applies mutate to a copy of the loan and persists it only
// on success
func (m *MockLoanApplicationRepository) UpdateWithLock(_ context.Context, id uuid.UUID, mutate func(*domain.LoanApplication) error) (*domain.LoanApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loan, ok := m.Loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	working := cloneLoan(loan)
	if err := mutate(working); err != nil {
		return nil, err
	}
	m.Loans[id] = working
	return working, nil
}

// Disburse applies mutate and stores the returned fee ledger row atomically
func (m *MockLoanApplicationRepository) Disburse(_ context.Context, id uuid.UUID, mutate func(*domain.LoanApplication) (*domain.LoanFees, error)) (*domain.LoanApplication, *domain.LoanFees, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loan, ok := m.Loans[id]
	if !ok {
		return nil, nil, domain.ErrLoanNotFound
	}
	working := cloneLoan(loan)
	fees, err := mutate(working)
	if err != nil {
		return nil, nil, err
	}
	m.Loans[id] = working
	if m.Fees != nil && fees != nil {
		m.Fees.AddFees(fees)
	}
	return working, fees, nil
}

// Delete removes a loan application
func (m *MockLoanApplicationRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.Loans[id]; !ok {
		return domain.ErrLoanNotFound
	}
	delete(m.Loans, id)
	return nil
}

// CountByStatus returns the number of loans per status
func (m *MockLoanApplicationRepository) CountByStatus(_ context.Context) ([]domain.StatusCount, error) {
	counts := make(map[domain.ApplicationStatus]int64)
	for _, loan := range m.Loans {
		counts[loan.Status]++
	}
	out := make([]domain.StatusCount, 0, len(counts))
	for status, count := range counts {
		out = append(out, domain.StatusCount{Status: status, Count: count})
	}
	return out, nil
}

// SumDisbursed returns the total disbursed amount across all loans
func (m *MockLoanApplicationRepository) SumDisbursed(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, loan := range m.Loans {
		if loan.DisbursedAt != nil {
			total = total.Add(loan.DisbursedAmount)
		}
	}
	return total, nil
}

func cloneLoan(loan *domain.LoanApplication) *domain.LoanApplication {
	clone := *loan
	clone.Repayments = append([]domain.EmiRecord(nil), loan.Repayments...)
	clone.OtherFees = append([]domain.FeeSpec(nil), loan.OtherFees...)
	clone.HousePhotos = append([]domain.HousePhoto(nil), loan.HousePhotos...)
	return &clone
}

// MockLoanFeesRepository is a mock implementation of domain.LoanFeesRepository
type MockLoanFeesRepository struct {
	Fees map[uuid.UUID]*domain.LoanFees
}

// NewMockLoanFeesRepository creates a new MockLoanFeesRepository
func NewMockLoanFeesRepository() *MockLoanFeesRepository {
	return &MockLoanFeesRepository{Fees: make(map[uuid.UUID]*domain.LoanFees)}
}

// AddFees adds a fee ledger row to the mock repository (helper for tests)
func (m *MockLoanFeesRepository) AddFees(fees *domain.LoanFees) {
	m.Fees[fees.ID] = fees
}

// GetByID retrieves a fee ledger row by ID
func (m *MockLoanFeesRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.LoanFees, error) {
	if fees, ok := m.Fees[id]; ok {
		return fees, nil
	}
	return nil, domain.ErrFeeRecordNotFound
}

// GetByLoanID retrieves the fee ledger row for a loan
func (m *MockLoanFeesRepository) GetByLoanID(_ context.Context, loanID uuid.UUID) (*domain.LoanFees, error) {
	for _, fees := range m.Fees {
		if fees.LoanID == loanID {
			return fees, nil
		}
	}
	return nil, domain.ErrFeeRecordNotFound
}

// List retrieves fee ledger rows, optionally only the unpaid ones
func (m *MockLoanFeesRepository) List(_ context.Context, unpaidOnly bool) ([]*domain.LoanFees, error) {
	var out []*domain.LoanFees
	for _, fees := range m.Fees {
		if unpaidOnly && fees.Paid {
			continue
		}
		out = append(out, fees)
	}
	return out, nil
}

// Update updates an existing fee ledger row
func (m *MockLoanFeesRepository) Update(_ context.Context, fees *domain.LoanFees) (*domain.LoanFees, error) {
	if _, ok := m.Fees[fees.ID]; !ok {
		return nil, domain.ErrFeeRecordNotFound
	}
	m.Fees[fees.ID] = fees
	return fees, nil
}

// MockObjectRepository is a mock implementation of storage.ObjectRepository.
// Uploads are recorded in memory; FailPaths injects upload failures.
type MockObjectRepository struct {
	Objects   map[string][]byte
	Deleted   []string
	FailPaths map[string]error
	BaseURL   string
}

// NewMockObjectRepository creates a new MockObjectRepository
func NewMockObjectRepository() *MockObjectRepository {
	return &MockObjectRepository{
		Objects:   make(map[string][]byte),
		FailPaths: make(map[string]error),
		BaseURL:   "https://storage.test",
	}
}

// Upload stores the object and returns its fake public URL
func (m *MockObjectRepository) Upload(_ context.Context, objectPath string, data io.Reader, _ string, _ int64) (string, error) {
	if err, ok := m.FailPaths[objectPath]; ok {
		return "", err
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(data); err != nil {
		return "", err
	}
	m.Objects[objectPath] = buf.Bytes()
	return m.BaseURL + "/" + objectPath, nil
}

// Delete removes the object, recording the call
func (m *MockObjectRepository) Delete(_ context.Context, objectPath string) error {
	delete(m.Objects, objectPath)
	m.Deleted = append(m.Deleted, objectPath)
	return nil
}

// MockRenderer is a mock implementation of contract.Renderer
type MockRenderer struct {
	Rendered []contract.Data
	Err      error
}

// Render records the snapshot and returns a canned document
func (m *MockRenderer) Render(_ context.Context, data contract.Data) ([]byte, string, error) {
	if m.Err != nil {
		return nil, "", m.Err
	}
	m.Rendered = append(m.Rendered, data)
	return []byte(fmt.Sprintf("<html>agreement %s</html>", data.LoanID)), "text/html", nil
}

// MockPublisher is a mock implementation of websocket.EventPublisher that
// captures published events for assertions
type MockPublisher struct {
	Events     []websocket.Event
	RoleEvents map[string][]websocket.Event
}

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{RoleEvents: make(map[string][]websocket.Event)}
}

// Publish captures a broadcast event
func (m *MockPublisher) Publish(event websocket.Event) {
	m.Events = append(m.Events, event)
}

// PublishToRole captures a role-scoped event
func (m *MockPublisher) PublishToRole(role string, event websocket.Event) {
	m.RoleEvents[role] = append(m.RoleEvents[role], event)
}

// EventTypes returns the captured event type strings in order (helper for tests)
func (m *MockPublisher) EventTypes() []string {
	types := make([]string, 0, len(m.Events))
	for _, event := range m.Events {
		types = append(types, event.Type)
	}
	return types
}
