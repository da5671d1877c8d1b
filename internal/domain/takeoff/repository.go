package takeoff

import (
	"context"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DrawingRepository defines the interface for package drawing persistence
type DrawingRepository interface {
	// FindByIDForCompany finds a drawing by ID for a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*PackageDrawing, error)

	// FindByWorkPackage lists drawings under a work package
	FindByWorkPackage(ctx context.Context, companyID, workPackageID uuid.UUID, filter shared.Filter) ([]PackageDrawing, error)

	// Save creates or updates a drawing
	Save(ctx context.Context, d *PackageDrawing) error

	// ReplaceInstantJSON compare-and-swaps the annotation blob: the update
	// applies only when the stored sync_version equals baseVersion, and
	// increments it. Returns the new version, or
	// shared.ErrConcurrencyConflict with the current version when the swap
	// loses the race.
	ReplaceInstantJSON(ctx context.Context, companyID, id uuid.UUID, blob string, baseVersion int64) (int64, error)

	// DeleteForCompany deletes a drawing and its annotations/measurements
	DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error

	// CountForCompany counts drawings for a company
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)
}

// AnnotationRepository defines the interface for drawing annotation persistence
type AnnotationRepository interface {
	// FindByAnnotationID finds an annotation by its SDK identifier on a drawing
	FindByAnnotationID(ctx context.Context, companyID, drawingID uuid.UUID, annotationID string) (*DrawingAnnotation, error)

	// FindByDrawing lists annotations on a drawing
	FindByDrawing(ctx context.Context, companyID, drawingID uuid.UUID) ([]DrawingAnnotation, error)

	// Save creates or updates an annotation
	Save(ctx context.Context, a *DrawingAnnotation) error

	// DeleteWithMeasurement deletes the annotation and any linked measurement
	// in one transaction. Reports whether a measurement was removed; a
	// missing measurement is not an error.
	DeleteWithMeasurement(ctx context.Context, companyID, drawingID uuid.UUID, annotationID string) (bool, error)

	// CountByDrawing counts annotations on a drawing
	CountByDrawing(ctx context.Context, companyID, drawingID uuid.UUID) (int64, error)
}

// MeasurementRepository defines the interface for takeoff measurement persistence
type MeasurementRepository interface {
	// FindByIDForCompany finds a measurement by ID for a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*TraceTakeoffMeasurement, error)

	// FindByAnnotationID finds the measurement linked to an annotation
	FindByAnnotationID(ctx context.Context, companyID, drawingID uuid.UUID, annotationID string) (*TraceTakeoffMeasurement, error)

	// FindByDrawing lists measurements on a drawing
	FindByDrawing(ctx context.Context, companyID, drawingID uuid.UUID, filter shared.Filter) ([]TraceTakeoffMeasurement, error)

	// Save creates or updates a measurement
	Save(ctx context.Context, m *TraceTakeoffMeasurement) error

	// DeleteForCompany deletes a measurement
	DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error

	// CountByDrawing counts measurements on a drawing
	CountByDrawing(ctx context.Context, companyID, drawingID uuid.UUID) (int64, error)
}
