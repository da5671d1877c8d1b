package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCompanyProvider implements CompanyProvider using GORM.
type GormCompanyProvider struct {
	db *gorm.DB
}

// NewGormCompanyProvider creates a new GormCompanyProvider.
func NewGormCompanyProvider(db *gorm.DB) *GormCompanyProvider {
	return &GormCompanyProvider{db: db}
}

// GetActiveCompanyIDs returns all active company IDs.
func (p *GormCompanyProvider) GetActiveCompanyIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("companies").
		Where("status = ?", "active").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GormProductionMetricsProvider implements ProductionMetricsProvider using GORM.
// It queries production state directly rather than going through repositories
// so that periodic collection stays cheap.
type GormProductionMetricsProvider struct {
	db *gorm.DB
}

// NewGormProductionMetricsProvider creates a new GormProductionMetricsProvider.
func NewGormProductionMetricsProvider(db *gorm.DB) *GormProductionMetricsProvider {
	return &GormProductionMetricsProvider{db: db}
}

// statusCount is a scan target for grouped status counts.
type statusCount struct {
	Status string
	Count  int64
}

// GetOpenWorkOrderCountByStatus returns the number of non-terminal work
// orders per status for a company.
func (p *GormProductionMetricsProvider) GetOpenWorkOrderCountByStatus(ctx context.Context, companyID uuid.UUID) (map[string]int64, error) {
	var rows []statusCount
	err := p.db.WithContext(ctx).
		Table("work_orders").
		Select("status, COUNT(*) AS count").
		Where("company_id = ?", companyID).
		Where("status NOT IN ?", []string{"COMPLETE", "CANCELLED"}).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// GetOverdueOrderCount returns the number of confirmed orders past their
// required date for a company.
func (p *GormProductionMetricsProvider) GetOverdueOrderCount(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("orders").
		Where("company_id = ?", companyID).
		Where("status = ?", "CONFIRMED").
		Where("required_date IS NOT NULL AND required_date < ?", time.Now()).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
