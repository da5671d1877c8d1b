package trace

import (
	"context"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TraceRecordRepository defines the interface for trace record persistence
type TraceRecordRepository interface {
	// FindByIDForCompany finds a trace record by ID for a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*TraceRecord, error)

	// FindByReference finds records anchored to an entity
	FindByReference(ctx context.Context, companyID uuid.UUID, referenceType string, referenceID uuid.UUID) ([]TraceRecord, error)

	// FindChildren lists direct children of a record
	FindChildren(ctx context.Context, companyID, parentID uuid.UUID) ([]TraceRecord, error)

	// FindAllForCompany lists records with filtering
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]TraceRecord, error)

	// Save creates or updates a trace record
	Save(ctx context.Context, r *TraceRecord) error

	// DeleteForCompany deletes a trace record
	DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error

	// CountForCompany counts records for a company
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)
}
