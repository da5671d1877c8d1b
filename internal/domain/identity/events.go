package identity

import (
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeCompany    = "Company"
	AggregateTypeUser       = "User"
	AggregateTypeInvitation = "Invitation"
)

// Event type constants
const (
	EventTypeCompanyCreated       = "CompanyCreated"
	EventTypeCompanyStatusChanged = "CompanyStatusChanged"
	EventTypeUserCreated          = "UserCreated"
	EventTypeUserStatusChanged    = "UserStatusChanged"
	EventTypeInvitationCreated    = "InvitationCreated"
	EventTypeInvitationAccepted   = "InvitationAccepted"
)

// CompanyCreatedEvent is raised when a new company is registered
type CompanyCreatedEvent struct {
	shared.BaseDomainEvent
	CompanyCode string `json:"company_code"`
	CompanyName string `json:"company_name"`
}

// NewCompanyCreatedEvent creates a new CompanyCreatedEvent
func NewCompanyCreatedEvent(c *Company) *CompanyCreatedEvent {
	return &CompanyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyCreated, AggregateTypeCompany, c.ID, c.ID),
		CompanyCode:     c.Code,
		CompanyName:     c.Name,
	}
}

// EventType returns the event type name
func (e *CompanyCreatedEvent) EventType() string {
	return EventTypeCompanyCreated
}

// CompanyStatusChangedEvent is raised when a company changes status
type CompanyStatusChangedEvent struct {
	shared.BaseDomainEvent
	CompanyCode string        `json:"company_code"`
	Status      CompanyStatus `json:"status"`
}

// NewCompanyStatusChangedEvent creates a new CompanyStatusChangedEvent
func NewCompanyStatusChangedEvent(c *Company) *CompanyStatusChangedEvent {
	return &CompanyStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyStatusChanged, AggregateTypeCompany, c.ID, c.ID),
		CompanyCode:     c.Code,
		Status:          c.Status,
	}
}

// EventType returns the event type name
func (e *CompanyStatusChangedEvent) EventType() string {
	return EventTypeCompanyStatusChanged
}

// UserCreatedEvent is raised when a new user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   UserRole  `json:"role"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, u.ID, u.CompanyID),
		UserID:          u.ID,
		Email:           u.Email,
		Role:            u.Role,
	}
}

// EventType returns the event type name
func (e *UserCreatedEvent) EventType() string {
	return EventTypeUserCreated
}

// UserStatusChangedEvent is raised when a user changes status
type UserStatusChangedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID  `json:"user_id"`
	Email  string     `json:"email"`
	Status UserStatus `json:"status"`
}

// NewUserStatusChangedEvent creates a new UserStatusChangedEvent
func NewUserStatusChangedEvent(u *User) *UserStatusChangedEvent {
	return &UserStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserStatusChanged, AggregateTypeUser, u.ID, u.CompanyID),
		UserID:          u.ID,
		Email:           u.Email,
		Status:          u.Status,
	}
}

// EventType returns the event type name
func (e *UserStatusChangedEvent) EventType() string {
	return EventTypeUserStatusChanged
}

// InvitationCreatedEvent is raised when an invitation is issued.
// The mailer listens for it to deliver the invitation email.
type InvitationCreatedEvent struct {
	shared.BaseDomainEvent
	InvitationID uuid.UUID `json:"invitation_id"`
	Email        string    `json:"email"`
	Role         UserRole  `json:"role"`
	Token        string    `json:"token"`
}

// NewInvitationCreatedEvent creates a new InvitationCreatedEvent
func NewInvitationCreatedEvent(i *Invitation) *InvitationCreatedEvent {
	return &InvitationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvitationCreated, AggregateTypeInvitation, i.ID, i.CompanyID),
		InvitationID:    i.ID,
		Email:           i.Email,
		Role:            i.Role,
		Token:           i.Token,
	}
}

// EventType returns the event type name
func (e *InvitationCreatedEvent) EventType() string {
	return EventTypeInvitationCreated
}

// InvitationAcceptedEvent is raised when an invitation is redeemed
type InvitationAcceptedEvent struct {
	shared.BaseDomainEvent
	InvitationID uuid.UUID `json:"invitation_id"`
	Email        string    `json:"email"`
}

// NewInvitationAcceptedEvent creates a new InvitationAcceptedEvent
func NewInvitationAcceptedEvent(i *Invitation) *InvitationAcceptedEvent {
	return &InvitationAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvitationAccepted, AggregateTypeInvitation, i.ID, i.CompanyID),
		InvitationID:    i.ID,
		Email:           i.Email,
	}
}

// EventType returns the event type name
func (e *InvitationAcceptedEvent) EventType() string {
	return EventTypeInvitationAccepted
}
