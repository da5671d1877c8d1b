// Package companyscope provides multi-company database scoping for GORM.
//
// Every company-owned table carries a company_id column. This package pulls
// the company ID out of the request context and appends the matching
// WHERE company_id = ? condition, so repositories cannot read another
// company's rows by accident.
//
// Usage:
//
//	db := companyscope.NewCompanyDB(gormDB)
//	scopedDB := db.WithContext(ctx) // automatically applies company filtering
//	scopedDB.Find(&orders) // WHERE company_id = 'xxx' is auto-added
package companyscope

import (
	"context"
	"errors"

	"github.com/fabmate/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrCompanyIDRequired is returned when company_id is required but not found
var ErrCompanyIDRequired = errors.New("company_id is required but not found in context")

// ErrInvalidCompanyID is returned when company_id format is invalid
var ErrInvalidCompanyID = errors.New("invalid company_id format")

// Scope applies company filtering to GORM queries
func Scope(companyID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}

// ScopeString applies company filtering using string company ID
func ScopeString(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}

// CompanyDB wraps GORM DB with automatic company scoping
type CompanyDB struct {
	db            *gorm.DB
	companyColumn string
	required      bool
}

// Config holds configuration for CompanyDB
type Config struct {
	// CompanyColumn is the name of the company ID column (default: "company_id")
	CompanyColumn string
	// Required determines if company_id is mandatory (default: true)
	Required bool
}

// DefaultConfig returns default CompanyDB configuration
func DefaultConfig() Config {
	return Config{CompanyColumn: "company_id", Required: true}
}

// NewCompanyDB creates a new CompanyDB with default configuration
func NewCompanyDB(db *gorm.DB) *CompanyDB {
	return NewCompanyDBWithConfig(db, DefaultConfig())
}

// NewCompanyDBWithConfig creates a new CompanyDB with custom configuration
func NewCompanyDBWithConfig(db *gorm.DB, cfg Config) *CompanyDB {
	if cfg.CompanyColumn == "" {
		cfg.CompanyColumn = "company_id"
	}
	return &CompanyDB{db: db, companyColumn: cfg.CompanyColumn, required: cfg.Required}
}

// DB returns the underlying GORM DB without company scoping.
// Use with caution, this bypasses company isolation.
func (c *CompanyDB) DB() *gorm.DB {
	return c.db
}

// poisoned returns db primed to fail every subsequent operation with err.
func poisoned(db *gorm.DB, err error) *gorm.DB {
	_ = db.AddError(err)
	return db
}

// WithContext returns a GORM DB scoped to the company from context.
// The company_id is extracted from the context (set by the company scope
// middleware). A missing ID with Required set, or a malformed ID, yields a
// DB that errors on any operation.
func (c *CompanyDB) WithContext(ctx context.Context) *gorm.DB {
	db := c.db.WithContext(ctx)

	companyID := logger.GetCompanyID(ctx)
	switch {
	case companyID == "" && c.required:
		return poisoned(db, ErrCompanyIDRequired)
	case companyID == "":
		return db
	}

	if _, err := uuid.Parse(companyID); err != nil {
		return poisoned(db, ErrInvalidCompanyID)
	}
	return db.Scopes(ScopeString(companyID))
}

// WithCompany returns a GORM DB scoped to a specific company ID.
// Use this when you have the company ID directly rather than from context.
func (c *CompanyDB) WithCompany(companyID uuid.UUID) *gorm.DB {
	if companyID == uuid.Nil {
		if c.required {
			return poisoned(c.db, ErrCompanyIDRequired)
		}
		return c.db
	}
	return c.db.Scopes(Scope(companyID))
}

// WithCompanyString returns a GORM DB scoped to a specific company ID string.
func (c *CompanyDB) WithCompanyString(companyID string) *gorm.DB {
	if companyID == "" {
		if c.required {
			return poisoned(c.db, ErrCompanyIDRequired)
		}
		return c.db
	}
	if _, err := uuid.Parse(companyID); err != nil {
		return poisoned(c.db, ErrInvalidCompanyID)
	}
	return c.db.Scopes(ScopeString(companyID))
}

// ForCompany creates a scoped DB bound to both a context and a company ID.
// Useful when the scoped handle has to be passed around.
func (c *CompanyDB) ForCompany(ctx context.Context, companyID uuid.UUID) *gorm.DB {
	return c.db.WithContext(ctx).Scopes(Scope(companyID))
}

// Transaction executes fn within a database transaction under company scope
func (c *CompanyDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	companyID := logger.GetCompanyID(ctx)
	if companyID == "" && c.required {
		return ErrCompanyIDRequired
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if companyID != "" {
			tx = tx.Scopes(ScopeString(companyID))
		}
		return fn(tx)
	})
}

// Unscoped returns the underlying DB without any company scoping.
// WARNING: bypasses company isolation, keep it to system-level operations
// and migrations.
func (c *CompanyDB) Unscoped() *gorm.DB {
	return c.db
}

// SetRequired changes whether company_id is required
func (c *CompanyDB) SetRequired(required bool) *CompanyDB {
	return &CompanyDB{db: c.db, companyColumn: c.companyColumn, required: required}
}
