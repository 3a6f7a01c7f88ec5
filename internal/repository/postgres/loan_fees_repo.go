package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediflow/crediflow-backend/internal/domain"
)

// LoanFeesRepository implements domain.LoanFeesRepository using PostgreSQL.
// Rows are created only by the disbursement transaction; this repository
// covers reads and settlement updates.
type LoanFeesRepository struct {
	pool *pgxpool.Pool
}

// NewLoanFeesRepository creates a new LoanFeesRepository
func NewLoanFeesRepository(pool *pgxpool.Pool) *LoanFeesRepository {
	return &LoanFeesRepository{pool: pool}
}

const loanFeesColumns = `id, loan_id, customer_id, customer_name, customer_mobile,
	amount, paid, paid_at, payment_method, transaction_id, proof_url, collected_by, created_at, updated_at`

func scanLoanFees(row pgx.Row) (*domain.LoanFees, error) {
	var f domain.LoanFees
	err := row.Scan(
		&f.ID, &f.LoanID, &f.CustomerID, &f.CustomerName, &f.CustomerMobile,
		&f.Amount, &f.Paid, &f.PaidAt, &f.PaymentMethod, &f.TransactionID, &f.ProofURL, &f.CollectedBy,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFeeRecordNotFound
		}
		return nil, err
	}
	return &f, nil
}

// insertLoanFees creates the ledger row inside the disbursement transaction.
func insertLoanFees(ctx context.Context, tx pgx.Tx, fees *domain.LoanFees) (*domain.LoanFees, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO loan_fees (
			id, loan_id, customer_id, customer_name, customer_mobile,
			amount, paid, paid_at, payment_method, transaction_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+loanFeesColumns,
		fees.ID, fees.LoanID, fees.CustomerID, fees.CustomerName, fees.CustomerMobile,
		fees.Amount, fees.Paid, fees.PaidAt, fees.PaymentMethod, fees.TransactionID,
	)
	return scanLoanFees(row)
}

// GetByID retrieves a fee ledger row by id
func (r *LoanFeesRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanFees, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+loanFeesColumns+` FROM loan_fees WHERE id = $1`, id)
	return scanLoanFees(row)
}

// GetByLoanID retrieves the fee ledger row for a loan
func (r *LoanFeesRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) (*domain.LoanFees, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+loanFeesColumns+` FROM loan_fees WHERE loan_id = $1`, loanID)
	return scanLoanFees(row)
}

// List retrieves fee ledger rows, optionally only the unpaid ones
func (r *LoanFeesRepository) List(ctx context.Context, unpaidOnly bool) ([]*domain.LoanFees, error) {
	query := `SELECT ` + loanFeesColumns + ` FROM loan_fees`
	if unpaidOnly {
		query += ` WHERE paid = false`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fees []*domain.LoanFees
	for rows.Next() {
		f, err := scanLoanFees(rows)
		if err != nil {
			return nil, err
		}
		fees = append(fees, f)
	}
	return fees, rows.Err()
}

// Update rewrites a fee ledger row's settlement fields
func (r *LoanFeesRepository) Update(ctx context.Context, fees *domain.LoanFees) (*domain.LoanFees, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE loan_fees SET
			paid = $2, paid_at = $3, payment_method = $4, transaction_id = $5,
			proof_url = $6, collected_by = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+loanFeesColumns,
		fees.ID, fees.Paid, fees.PaidAt, fees.PaymentMethod, fees.TransactionID, fees.ProofURL, fees.CollectedBy,
	)
	return scanLoanFees(row)
}
