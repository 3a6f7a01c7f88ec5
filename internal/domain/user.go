package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role identifies a staff member's position in the back office.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleAgent   Role = "AGENT"
)

// Valid reports whether r is a known staff role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAgent:
		return true
	}
	return false
}

// StaffUser is a back-office operator: an admin, a branch manager, or a
// field agent. Role decides which lifecycle operations the user may run.
type StaffUser struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobileNumber"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type StaffUserRepository interface {
	Create(ctx context.Context, user *StaffUser) (*StaffUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*StaffUser, error)
	GetByEmail(ctx context.Context, email string) (*StaffUser, error)
	ListByRole(ctx context.Context, role Role) ([]*StaffUser, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
