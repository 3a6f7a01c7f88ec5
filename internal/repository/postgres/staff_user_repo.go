package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediflow/crediflow-backend/internal/domain"
)

// StaffUserRepository implements domain.StaffUserRepository using PostgreSQL
type StaffUserRepository struct {
	pool *pgxpool.Pool
}

// NewStaffUserRepository creates a new StaffUserRepository
func NewStaffUserRepository(pool *pgxpool.Pool) *StaffUserRepository {
	return &StaffUserRepository{pool: pool}
}

const staffUserColumns = `id, name, email, mobile_number, password_hash, role, created_at, updated_at`

func scanStaffUser(row pgx.Row) (*domain.StaffUser, error) {
	var u domain.StaffUser
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.MobileNumber, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new staff user
func (r *StaffUserRepository) Create(ctx context.Context, user *domain.StaffUser) (*domain.StaffUser, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO staff_users (id, name, email, mobile_number, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+staffUserColumns,
		user.ID, user.Name, user.Email, user.MobileNumber, user.PasswordHash, user.Role,
	)
	created, err := scanStaffUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.DuplicateFieldError{Field: "email"}
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a staff user by id
func (r *StaffUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffUser, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+staffUserColumns+` FROM staff_users WHERE id = $1`, id)
	return scanStaffUser(row)
}

// GetByEmail retrieves a staff user by email
func (r *StaffUserRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+staffUserColumns+` FROM staff_users WHERE email = $1`, email)
	return scanStaffUser(row)
}

// ListByRole retrieves all staff users with the given role
func (r *StaffUserRepository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.StaffUser, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+staffUserColumns+` FROM staff_users WHERE role = $1 ORDER BY created_at DESC`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.StaffUser
	for rows.Next() {
		u, err := scanStaffUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Delete removes a staff user
func (r *StaffUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM staff_users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
