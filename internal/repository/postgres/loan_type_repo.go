package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediflow/crediflow-backend/internal/domain"
)

// LoanTypeRepository implements domain.LoanTypeRepository using PostgreSQL
type LoanTypeRepository struct {
	pool *pgxpool.Pool
}

// NewLoanTypeRepository creates a new LoanTypeRepository
func NewLoanTypeRepository(pool *pgxpool.Pool) *LoanTypeRepository {
	return &LoanTypeRepository{pool: pool}
}

const loanTypeColumns = `id, loan_name, status, description, min_amount, max_amount,
	interest_rate, interest_type, processing_fees, insurance_fees, other_fees,
	loan_duration, collection_freq, created_at, updated_at`

func scanLoanType(row pgx.Row) (*domain.LoanType, error) {
	var t domain.LoanType
	err := row.Scan(
		&t.ID, &t.LoanName, &t.Status, &t.Description, &t.MinAmount, &t.MaxAmount,
		&t.InterestRate, &t.InterestType, &t.ProcessingFees, &t.InsuranceFees, &t.OtherFees,
		&t.LoanDuration, &t.CollectionFreq, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanTypeNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create inserts a new loan type
func (r *LoanTypeRepository) Create(ctx context.Context, loanType *domain.LoanType) (*domain.LoanType, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO loan_types (
			id, loan_name, status, description, min_amount, max_amount, interest_rate,
			interest_type, processing_fees, insurance_fees, other_fees, loan_duration, collection_freq
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+loanTypeColumns,
		loanType.ID, loanType.LoanName, loanType.Status, loanType.Description,
		loanType.MinAmount, loanType.MaxAmount, loanType.InterestRate, loanType.InterestType,
		loanType.ProcessingFees, loanType.InsuranceFees, loanType.OtherFees,
		loanType.LoanDuration, loanType.CollectionFreq,
	)
	created, err := scanLoanType(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.DuplicateFieldError{Field: "loanName"}
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a loan type by id
func (r *LoanTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanType, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+loanTypeColumns+` FROM loan_types WHERE id = $1`, id)
	return scanLoanType(row)
}

// List retrieves all loan types
func (r *LoanTypeRepository) List(ctx context.Context) ([]*domain.LoanType, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+loanTypeColumns+` FROM loan_types ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loanTypes []*domain.LoanType
	for rows.Next() {
		t, err := scanLoanType(rows)
		if err != nil {
			return nil, err
		}
		loanTypes = append(loanTypes, t)
	}
	return loanTypes, rows.Err()
}

// Update rewrites a loan type's mutable fields
func (r *LoanTypeRepository) Update(ctx context.Context, loanType *domain.LoanType) (*domain.LoanType, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE loan_types SET
			loan_name = $2, status = $3, description = $4, min_amount = $5, max_amount = $6,
			interest_rate = $7, interest_type = $8, processing_fees = $9, insurance_fees = $10,
			other_fees = $11, loan_duration = $12, collection_freq = $13, updated_at = now()
		WHERE id = $1
		RETURNING `+loanTypeColumns,
		loanType.ID, loanType.LoanName, loanType.Status, loanType.Description,
		loanType.MinAmount, loanType.MaxAmount, loanType.InterestRate, loanType.InterestType,
		loanType.ProcessingFees, loanType.InsuranceFees, loanType.OtherFees,
		loanType.LoanDuration, loanType.CollectionFreq,
	)
	return scanLoanType(row)
}

// Delete removes a loan type
func (r *LoanTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM loan_types WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanTypeNotFound
	}
	return nil
}
