package identity

import (
	"context"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CompanyRepository defines the interface for company persistence
type CompanyRepository interface {
	// FindByID finds a company by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)

	// FindByCode finds a company by its unique code
	FindByCode(ctx context.Context, code string) (*Company, error)

	// FindAll lists companies with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Company, error)

	// Save creates or updates a company
	Save(ctx context.Context, c *Company) error

	// Count counts companies
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByIDForCompany finds a user by ID within a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email across companies (login)
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByEmailForCompany finds a user by email within a company
	FindByEmailForCompany(ctx context.Context, companyID uuid.UUID, email string) (*User, error)

	// FindAllForCompany lists users in a company
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]User, error)

	// Save creates or updates a user
	Save(ctx context.Context, u *User) error

	// DeleteForCompany deletes a user from a company
	DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error

	// CountForCompany counts users in a company
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)
}

// InvitationRepository defines the interface for invitation persistence
type InvitationRepository interface {
	// FindByIDForCompany finds an invitation by ID within a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Invitation, error)

	// FindByToken finds an invitation by its token
	FindByToken(ctx context.Context, token string) (*Invitation, error)

	// FindPendingByEmail finds a pending invitation for an email in a company
	FindPendingByEmail(ctx context.Context, companyID uuid.UUID, email string) (*Invitation, error)

	// FindAllForCompany lists invitations in a company
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Invitation, error)

	// Save creates or updates an invitation
	Save(ctx context.Context, i *Invitation) error

	// DeleteForCompany deletes an invitation
	DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error
}
