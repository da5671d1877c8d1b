package identity

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvitationStatus represents the status of an invitation
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusExpired  InvitationStatus = "expired"
	InvitationStatusRevoked  InvitationStatus = "revoked"
)

// DefaultInvitationTTL is how long an invitation stays redeemable
const DefaultInvitationTTL = 7 * 24 * time.Hour

// Invitation invites an email address to join a company. The token is
// single-use and expires.
type Invitation struct {
	shared.CompanyAggregateRoot
	Email      string
	Role       UserRole
	Token      string `gorm:"not null;uniqueIndex"`
	Status     InvitationStatus
	InvitedBy  uuid.UUID
	ExpiresAt  time.Time
	AcceptedAt *time.Time
}

// NewInvitation creates a pending invitation with a fresh token
func NewInvitation(companyID, invitedBy uuid.UUID, email string, role UserRole) (*Invitation, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if invitedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVITER", "Inviting user ID cannot be empty")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE",
			"Invalid role '"+role.String()+"'. Allowed values: admin, member, viewer")
	}

	token, err := generateInvitationToken()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_GENERATION_ERROR", "Failed to generate invitation token")
	}

	inv := &Invitation{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Email:                strings.ToLower(strings.TrimSpace(email)),
		Role:                 role,
		Token:                token,
		Status:               InvitationStatusPending,
		InvitedBy:            invitedBy,
		ExpiresAt:            time.Now().Add(DefaultInvitationTTL),
	}

	inv.AddDomainEvent(NewInvitationCreatedEvent(inv))
	return inv, nil
}

// IsExpired checks whether the invitation has passed its expiry
func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// Accept redeems the invitation
func (i *Invitation) Accept() error {
	if i.Status != InvitationStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Invitation is not pending")
	}
	if i.IsExpired() {
		i.Status = InvitationStatusExpired
		return shared.NewDomainError("INVITATION_EXPIRED", "Invitation has expired")
	}

	now := time.Now()
	i.Status = InvitationStatusAccepted
	i.AcceptedAt = &now
	i.UpdatedAt = now

	i.AddDomainEvent(NewInvitationAcceptedEvent(i))
	return nil
}

// Revoke withdraws a pending invitation
func (i *Invitation) Revoke() error {
	if i.Status != InvitationStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending invitations can be revoked")
	}

	i.Status = InvitationStatusRevoked
	i.UpdatedAt = time.Now()
	return nil
}

func generateInvitationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
