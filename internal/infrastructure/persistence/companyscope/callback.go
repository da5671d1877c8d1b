package companyscope

import (
	"strings"

	"github.com/fabmate/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompanyCallback provides GORM callback hooks for automatic company filtering
type CompanyCallback struct {
	companyColumn string
	required      bool
}

// NewCompanyCallback creates a new company callback handler
func NewCompanyCallback(companyColumn string, required bool) *CompanyCallback {
	if companyColumn == "" {
		companyColumn = "company_id"
	}
	return &CompanyCallback{
		companyColumn: companyColumn,
		required:      required,
	}
}

// RegisterCallbacks registers company callbacks with GORM
func (cc *CompanyCallback) RegisterCallbacks(db *gorm.DB) {
	// Register query callback - add company filter
	_ = db.Callback().Query().Before("gorm:query").Register("companyscope:before_query", cc.beforeQuery)

	// Register update callback - ensure company filter
	_ = db.Callback().Update().Before("gorm:update").Register("companyscope:before_update", cc.beforeUpdate)

	// Register delete callback - ensure company filter
	_ = db.Callback().Delete().Before("gorm:delete").Register("companyscope:before_delete", cc.beforeDelete)

	// Register row query callback - add company filter
	_ = db.Callback().Row().Before("gorm:row").Register("companyscope:before_row", cc.beforeQuery)

	// Note: Create callback is not registered because company_id should be set
	// explicitly by the application when creating entities
}

// beforeQuery adds company filter to SELECT queries
func (cc *CompanyCallback) beforeQuery(db *gorm.DB) {
	cc.addCompanyFilter(db)
}

// beforeUpdate adds company filter to UPDATE queries
func (cc *CompanyCallback) beforeUpdate(db *gorm.DB) {
	cc.addCompanyFilter(db)
}

// beforeDelete adds company filter to DELETE queries
func (cc *CompanyCallback) beforeDelete(db *gorm.DB) {
	cc.addCompanyFilter(db)
}

// addCompanyFilter adds company filtering to the query
func (cc *CompanyCallback) addCompanyFilter(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}

	// Skip if unscoped
	if db.Statement.Unscoped {
		return
	}

	// Skip models that don't carry a company column (raw SQL, junction
	// tables, system-level records like catalogue items)
	if !cc.modelHasCompanyColumn(db) {
		return
	}

	// Skip if already has company condition
	if cc.hasCompanyCondition(db) {
		return
	}

	// Get company ID from context
	companyID := logger.GetCompanyID(db.Statement.Context)
	if companyID == "" {
		if cc.required {
			_ = db.AddError(ErrCompanyIDRequired)
		}
		return
	}

	// Validate UUID format
	if _, err := uuid.Parse(companyID); err != nil {
		_ = db.AddError(ErrInvalidCompanyID)
		return
	}

	// Add company filter using GORM's clause
	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: clause.CurrentTable, Name: cc.companyColumn},
				Value:  companyID,
			},
		},
	})
}

// modelHasCompanyColumn reports whether the target model declares the company
// column. The statement schema is parsed before callbacks run, so a nil schema
// means a raw query we must leave alone.
func (cc *CompanyCallback) modelHasCompanyColumn(db *gorm.DB) bool {
	if db.Statement.Schema == nil {
		return false
	}
	return db.Statement.Schema.LookUpField(cc.companyColumn) != nil
}

// hasCompanyCondition checks if company_id condition is already present
func (cc *CompanyCallback) hasCompanyCondition(db *gorm.DB) bool {
	// Check if there's a manual scope applied via Unscoped
	if db.Statement.Unscoped {
		return true
	}

	// Check existing where clauses for company_id
	if whereClause, ok := db.Statement.Clauses["WHERE"]; ok {
		if where, ok := whereClause.Expression.(clause.Where); ok {
			for _, expr := range where.Exprs {
				if cc.exprContainsCompany(expr) {
					return true
				}
			}
		}
	}

	// Also check the built SQL if available
	sql := db.Statement.SQL.String()
	if sql != "" && strings.Contains(sql, cc.companyColumn) {
		return true
	}

	return false
}

// exprContainsCompany checks if an expression contains the company column
func (cc *CompanyCallback) exprContainsCompany(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == cc.companyColumn
		}
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == cc.companyColumn
		}
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if cc.exprContainsCompany(cond) {
				return true
			}
		}
	case clause.OrConditions:
		for _, cond := range e.Exprs {
			if cc.exprContainsCompany(cond) {
				return true
			}
		}
	case clause.Expr:
		if strings.Contains(e.SQL, cc.companyColumn) {
			return true
		}
	}
	return false
}

// EnableAutoCompanyFilter enables automatic company filtering on a GORM DB
// instance. This registers callbacks that automatically add company_id
// filtering to queries against company-scoped tables.
func EnableAutoCompanyFilter(db *gorm.DB, required bool) {
	cc := NewCompanyCallback("company_id", required)
	cc.RegisterCallbacks(db)
}

// DisableAutoCompanyFilter removes the company callbacks (not recommended in production)
func DisableAutoCompanyFilter(db *gorm.DB) {
	// Note: GORM doesn't provide a clean way to remove callbacks
	// This is mainly for testing purposes
	_ = db.Callback().Query().Remove("companyscope:before_query")
	_ = db.Callback().Update().Remove("companyscope:before_update")
	_ = db.Callback().Delete().Remove("companyscope:before_delete")
	_ = db.Callback().Row().Remove("companyscope:before_row")
}
