package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CompanyStatus represents the status of a company
type CompanyStatus string

const (
	CompanyStatusActive    CompanyStatus = "active"
	CompanyStatusInactive  CompanyStatus = "inactive"
	CompanyStatusSuspended CompanyStatus = "suspended"
)

// Company represents an organization in the multi-company system.
// It is the tenancy boundary: every other aggregate is scoped by its ID.
type Company struct {
	shared.BaseAggregateRoot
	Code         string        `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string        `gorm:"type:varchar(200);not null"`
	Status       CompanyStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName  string        `gorm:"type:varchar(100)"`
	ContactPhone string        `gorm:"type:varchar(50)"`
	ContactEmail string        `gorm:"type:varchar(200)"`
	Address      string        `gorm:"type:text"`
	Notes        string        `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Company) TableName() string {
	return "companies"
}

// NewCompany creates a new company with required fields
func NewCompany(code, name string) (*Company, error) {
	if err := validateCompanyCode(code); err != nil {
		return nil, err
	}
	if err := validateCompanyName(name); err != nil {
		return nil, err
	}

	company := &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            CompanyStatusActive,
	}

	company.AddDomainEvent(NewCompanyCreatedEvent(company))
	return company, nil
}

// Update updates the company name
func (c *Company) Update(name string) error {
	if err := validateCompanyName(name); err != nil {
		return err
	}

	c.Name = name
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// SetContact sets the company contact information
func (c *Company) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_CONTACT_PHONE", "Contact phone cannot exceed 50 characters")
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	c.ContactName = contactName
	c.ContactPhone = phone
	c.ContactEmail = strings.ToLower(strings.TrimSpace(email))
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// SetAddress sets the company address
func (c *Company) SetAddress(address string) error {
	if len(address) > 1000 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 1000 characters")
	}

	c.Address = address
	c.UpdatedAt = time.Now()
	return nil
}

// Activate activates the company
func (c *Company) Activate() error {
	if c.Status == CompanyStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Company is already active")
	}

	c.Status = CompanyStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCompanyStatusChangedEvent(c))
	return nil
}

// Deactivate deactivates the company
func (c *Company) Deactivate() error {
	if c.Status == CompanyStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Company is already inactive")
	}

	c.Status = CompanyStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCompanyStatusChangedEvent(c))
	return nil
}

// Suspend suspends the company
func (c *Company) Suspend() error {
	if c.Status == CompanyStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Company is already suspended")
	}

	c.Status = CompanyStatusSuspended
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCompanyStatusChangedEvent(c))
	return nil
}

// IsActive checks if the company is active
func (c *Company) IsActive() bool {
	return c.Status == CompanyStatusActive
}

var companyCodeRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func validateCompanyCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_COMPANY_CODE", "Company code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_COMPANY_CODE", "Company code cannot exceed 50 characters")
	}
	if !companyCodeRegex.MatchString(code) {
		return shared.NewDomainError("INVALID_COMPANY_CODE", "Company code may only contain letters, digits, hyphen and underscore")
	}
	return nil
}

func validateCompanyName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot exceed 200 characters")
	}
	return nil
}

// GetCompanyID returns the company's own ID (implements scoping helpers)
func (c *Company) GetCompanyID() uuid.UUID {
	return c.ID
}
