package takeoff

import (
	"encoding/json"
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AnnotationType classifies a drawing annotation
type AnnotationType string

const (
	AnnotationTypeLine    AnnotationType = "LINE"
	AnnotationTypePolygon AnnotationType = "POLYGON"
	AnnotationTypePoint   AnnotationType = "POINT"
	AnnotationTypeNote    AnnotationType = "NOTE"
)

// IsValid checks if the type is a valid AnnotationType
func (t AnnotationType) IsValid() bool {
	switch t {
	case AnnotationTypeLine, AnnotationTypePolygon, AnnotationTypePoint, AnnotationTypeNote:
		return true
	}
	return false
}

// String returns the string representation of AnnotationType
func (t AnnotationType) String() string {
	return string(t)
}

// DrawingAnnotation is the server-side identity record of one annotation on a
// drawing. AnnotationID is the PDF SDK's identifier, unique per drawing;
// geometry is stored as the SDK emitted it.
type DrawingAnnotation struct {
	shared.CompanyAggregateRoot
	DrawingID    uuid.UUID `gorm:"type:uuid;not null;index"`
	AnnotationID string    `gorm:"not null;index"`
	Type         AnnotationType
	PageIndex    int
	Geometry     string `gorm:"type:text"`
}

// NewDrawingAnnotation records an annotation created on a drawing
func NewDrawingAnnotation(companyID, drawingID uuid.UUID, annotationID string, annType AnnotationType, pageIndex int, geometry string) (*DrawingAnnotation, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if drawingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DRAWING", "Drawing ID cannot be empty")
	}
	if annotationID == "" {
		return nil, shared.NewDomainError("INVALID_ANNOTATION_ID", "Annotation ID cannot be empty")
	}
	if !annType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ANNOTATION_TYPE",
			"Invalid annotation type '"+annType.String()+"'. Allowed values: LINE, POLYGON, POINT, NOTE")
	}
	if pageIndex < 0 {
		return nil, shared.NewDomainError("INVALID_PAGE", "Page index cannot be negative")
	}
	if geometry != "" && !json.Valid([]byte(geometry)) {
		return nil, shared.NewDomainError("INVALID_GEOMETRY", "Geometry must be valid JSON")
	}

	return &DrawingAnnotation{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		DrawingID:            drawingID,
		AnnotationID:         annotationID,
		Type:                 annType,
		PageIndex:            pageIndex,
		Geometry:             geometry,
	}, nil
}

// UpdateGeometry replaces the stored geometry
func (a *DrawingAnnotation) UpdateGeometry(geometry string) error {
	if geometry != "" && !json.Valid([]byte(geometry)) {
		return shared.NewDomainError("INVALID_GEOMETRY", "Geometry must be valid JSON")
	}

	a.Geometry = geometry
	a.UpdatedAt = time.Now()
	return nil
}
