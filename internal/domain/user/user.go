// Package user holds the directory of people who own customer relationships.
package user

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/cshub/backend/internal/domain/shared"
)

// Role is a user's function in the customer-success team
type Role string

const (
	RoleCSM   Role = "CSM"
	RoleAM    Role = "AM"
	RoleAdmin Role = "ADMIN"
)

// IsValid checks if the role is a known value
func (r Role) IsValid() bool {
	return r == RoleCSM || r == RoleAM || r == RoleAdmin
}

// User is a directory entry. It is maintained outside this service.
type User struct {
	shared.BaseEntity
	Email    string
	FullName string
	Role     Role
	IsActive bool
}

// NormalizeEmail lower-cases and trims an address for lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Repository reads the user directory
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByEmail matches the normalized address and returns NOT_FOUND otherwise
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, role Role, activeOnly bool) ([]User, error)
}
