package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/crediflow/crediflow-backend/internal/domain"
)

// LoanApplicationRepository implements domain.LoanApplicationRepository using
// PostgreSQL. Lifecycle transitions run inside a transaction holding a row
// lock on the loan, so concurrent writers on the same loan serialize instead
// of racing on the repayment schedule.
type LoanApplicationRepository struct {
	pool *pgxpool.Pool
}

// NewLoanApplicationRepository creates a new LoanApplicationRepository
func NewLoanApplicationRepository(pool *pgxpool.Pool) *LoanApplicationRepository {
	return &LoanApplicationRepository{pool: pool}
}

const loanColumns = `id, customer_id, loan_type_id, agent_id, manager_id, admin_id,
	loan_amount, interest_rate, interest_type, loan_duration, collection_freq,
	processing_fees, insurance_fees, other_fees,
	total_interest, total_payable_amount, disbursed_amount, remaining_amount,
	first_emi_date, repayments, fees_payment_method, disbursement_method, status,
	submitted_at, call_verified_at, contract_signed_at, field_verified_at, approved_at, disbursed_at,
	contract_document, signed_contract_document, house_photos, remark, created_at, updated_at`

func scanLoan(row pgx.Row) (*domain.LoanApplication, error) {
	var l domain.LoanApplication
	err := row.Scan(
		&l.ID, &l.CustomerID, &l.LoanTypeID, &l.AgentID, &l.ManagerID, &l.AdminID,
		&l.LoanAmount, &l.InterestRate, &l.InterestType, &l.LoanDuration, &l.CollectionFreq,
		&l.ProcessingFees, &l.InsuranceFees, &l.OtherFees,
		&l.TotalInterest, &l.TotalPayableAmount, &l.DisbursedAmount, &l.RemainingAmount,
		&l.FirstEmiDate, &l.Repayments, &l.FeesPaymentMethod, &l.DisbursementMethod, &l.Status,
		&l.SubmittedAt, &l.CallVerifiedAt, &l.ContractSignedAt, &l.FieldVerifiedAt, &l.ApprovedAt, &l.DisbursedAt,
		&l.ContractDocument, &l.SignedContractDocument, &l.HousePhotos, &l.Remark, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return &l, nil
}

// querier covers both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Create inserts a new loan application with its full repayment schedule
func (r *LoanApplicationRepository) Create(ctx context.Context, loan *domain.LoanApplication) (*domain.LoanApplication, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO loan_applications (
			id, customer_id, loan_type_id, agent_id,
			loan_amount, interest_rate, interest_type, loan_duration, collection_freq,
			processing_fees, insurance_fees, other_fees,
			total_interest, total_payable_amount, disbursed_amount, remaining_amount,
			first_emi_date, repayments, fees_payment_method, disbursement_method,
			status, submitted_at, remark
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23)
		RETURNING `+loanColumns,
		loan.ID, loan.CustomerID, loan.LoanTypeID, loan.AgentID,
		loan.LoanAmount, loan.InterestRate, loan.InterestType, loan.LoanDuration, loan.CollectionFreq,
		loan.ProcessingFees, loan.InsuranceFees, loan.OtherFees,
		loan.TotalInterest, loan.TotalPayableAmount, loan.DisbursedAmount, loan.RemainingAmount,
		loan.FirstEmiDate, loan.Repayments, loan.FeesPaymentMethod, loan.DisbursementMethod,
		loan.Status, loan.SubmittedAt, loan.Remark,
	)
	return scanLoan(row)
}

// GetByID retrieves a loan application by id
func (r *LoanApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	return r.getLoan(ctx, r.pool, id, false)
}

func (r *LoanApplicationRepository) getLoan(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*domain.LoanApplication, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_applications WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	return scanLoan(q.QueryRow(ctx, query, id))
}

// List retrieves all loan applications, newest first
func (r *LoanApplicationRepository) List(ctx context.Context) ([]*domain.LoanApplication, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+loanColumns+` FROM loan_applications ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*domain.LoanApplication
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// UpdateWithLock loads the loan under FOR UPDATE, applies mutate, and writes
// the whole record back within the same transaction. A mutate error rolls
// everything back and is returned unchanged.
func (r *LoanApplicationRepository) UpdateWithLock(ctx context.Context, id uuid.UUID, mutate func(*domain.LoanApplication) error) (*domain.LoanApplication, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	loan, err := r.getLoan(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	if err := mutate(loan); err != nil {
		return nil, err
	}
	if err := r.writeLoan(ctx, tx, loan); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return loan, nil
}

// Disburse is UpdateWithLock plus the fee-ledger insert returned by mutate,
// committed as a single transaction. Either both the status change and the
// ledger row land, or neither does.
func (r *LoanApplicationRepository) Disburse(ctx context.Context, id uuid.UUID, mutate func(*domain.LoanApplication) (*domain.LoanFees, error)) (*domain.LoanApplication, *domain.LoanFees, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	loan, err := r.getLoan(ctx, tx, id, true)
	if err != nil {
		return nil, nil, err
	}
	fees, err := mutate(loan)
	if err != nil {
		return nil, nil, err
	}
	if err := r.writeLoan(ctx, tx, loan); err != nil {
		return nil, nil, err
	}

	created, err := insertLoanFees(ctx, tx, fees)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return loan, created, nil
}

// writeLoan rewrites every mutable column of the loan row.
func (r *LoanApplicationRepository) writeLoan(ctx context.Context, tx pgx.Tx, loan *domain.LoanApplication) error {
	tag, err := tx.Exec(ctx, `
		UPDATE loan_applications SET
			manager_id = $2, admin_id = $3,
			disbursed_amount = $4, remaining_amount = $5,
			repayments = $6, status = $7,
			call_verified_at = $8, contract_signed_at = $9, field_verified_at = $10,
			approved_at = $11, disbursed_at = $12,
			contract_document = $13, signed_contract_document = $14, house_photos = $15,
			remark = $16, updated_at = now()
		WHERE id = $1`,
		loan.ID, loan.ManagerID, loan.AdminID,
		loan.DisbursedAmount, loan.RemainingAmount,
		loan.Repayments, loan.Status,
		loan.CallVerifiedAt, loan.ContractSignedAt, loan.FieldVerifiedAt,
		loan.ApprovedAt, loan.DisbursedAt,
		loan.ContractDocument, loan.SignedContractDocument, loan.HousePhotos,
		loan.Remark,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

// Delete removes a loan application. Administrative path, bypasses the
// lifecycle entirely.
func (r *LoanApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM loan_applications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

// CountByStatus returns how many loans sit in each lifecycle status
func (r *LoanApplicationRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, count(*) FROM loan_applications GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []domain.StatusCount
	for rows.Next() {
		var sc domain.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}

// SumDisbursed totals the amounts actually paid out across disbursed loans
func (r *LoanApplicationRepository) SumDisbursed(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(sum(disbursed_amount), 0)
		FROM loan_applications
		WHERE disbursed_at IS NOT NULL`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum disbursed amounts: %w", err)
	}
	return total, nil
}
