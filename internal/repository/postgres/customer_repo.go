package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediflow/crediflow-backend/internal/domain"
)

// CustomerRepository implements domain.CustomerRepository using PostgreSQL
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = `id, member_id, applicant_name, guardian_name, mobile_number, email,
	date_of_birth, village, district, pin_code, pan_number, poi_document_number,
	poa_document_number, account_status, password_hash, manager_id, agent_id,
	documents, created_at, updated_at`

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.ID, &c.MemberID, &c.ApplicantName, &c.GuardianName, &c.MobileNumber, &c.Email,
		&c.DateOfBirth, &c.Village, &c.District, &c.PinCode, &c.PANNumber, &c.POIDocumentNumber,
		&c.POADocumentNumber, &c.AccountStatus, &c.PasswordHash, &c.ManagerID, &c.AgentID,
		&c.Documents, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a new customer
func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO customers (
			id, member_id, applicant_name, guardian_name, mobile_number, email,
			date_of_birth, village, district, pin_code, pan_number, poi_document_number,
			poa_document_number, account_status, password_hash, manager_id, agent_id, documents
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING `+customerColumns,
		customer.ID, customer.MemberID, customer.ApplicantName, customer.GuardianName,
		customer.MobileNumber, customer.Email, customer.DateOfBirth, customer.Village,
		customer.District, customer.PinCode, customer.PANNumber, customer.POIDocumentNumber,
		customer.POADocumentNumber, customer.AccountStatus, customer.PasswordHash,
		customer.ManagerID, customer.AgentID, customer.Documents,
	)
	created, err := scanCustomer(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.DuplicateFieldError{Field: "memberId or mobileNumber"}
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a customer by id
func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	return scanCustomer(row)
}

// List retrieves customers, optionally scoped to a manager or agent
func (r *CustomerRepository) List(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	var (
		args []any
		cond string
	)
	switch {
	case filter.ManagerID != nil:
		cond = ` WHERE manager_id = $1`
		args = append(args, *filter.ManagerID)
	case filter.AgentID != nil:
		cond = ` WHERE agent_id = $1`
		args = append(args, *filter.AgentID)
	}
	query += cond + ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// Update rewrites the customer's mutable fields
func (r *CustomerRepository) Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE customers SET
			applicant_name = $2, guardian_name = $3, mobile_number = $4, email = $5,
			date_of_birth = $6, village = $7, district = $8, pin_code = $9, pan_number = $10,
			poi_document_number = $11, poa_document_number = $12, account_status = $13,
			password_hash = $14, manager_id = $15, agent_id = $16, documents = $17,
			updated_at = now()
		WHERE id = $1
		RETURNING `+customerColumns,
		customer.ID, customer.ApplicantName, customer.GuardianName, customer.MobileNumber,
		customer.Email, customer.DateOfBirth, customer.Village, customer.District,
		customer.PinCode, customer.PANNumber, customer.POIDocumentNumber,
		customer.POADocumentNumber, customer.AccountStatus, customer.PasswordHash,
		customer.ManagerID, customer.AgentID, customer.Documents,
	)
	updated, err := scanCustomer(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.DuplicateFieldError{Field: "mobileNumber"}
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a customer
func (r *CustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// Count returns the total number of customers
func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}
