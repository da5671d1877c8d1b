package trace

import (
	"time"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RecordType classifies a genealogy record
type RecordType string

const (
	RecordTypeMaterialReceipt RecordType = "MATERIAL_RECEIPT"
	RecordTypeProcessing      RecordType = "PROCESSING"
	RecordTypeAssembly        RecordType = "ASSEMBLY"
	RecordTypeShipment        RecordType = "SHIPMENT"
)

// IsValid checks if the type is a valid RecordType
func (t RecordType) IsValid() bool {
	switch t {
	case RecordTypeMaterialReceipt, RecordTypeProcessing, RecordTypeAssembly, RecordTypeShipment:
		return true
	}
	return false
}

// String returns the string representation of RecordType
func (t RecordType) String() string {
	return string(t)
}

// TraceRecord is a genealogy anchor. Records form a forest via ParentID;
// forward lineage follows children (where did this go), backward lineage
// follows parents (where did this come from).
type TraceRecord struct {
	shared.CompanyAggregateRoot
	RecordType    RecordType
	ParentID      *uuid.UUID `gorm:"type:uuid;index"`
	ReferenceType string     // Entity kind the record anchors (WorkOrder, CatalogueItem, ...)
	ReferenceID   uuid.UUID  `gorm:"type:uuid;index"`
	Description   string
	RecordedAt    time.Time
}

// NewTraceRecord creates a new genealogy record
func NewTraceRecord(companyID uuid.UUID, recordType RecordType, referenceType string, referenceID uuid.UUID, description string) (*TraceRecord, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if !recordType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RECORD_TYPE",
			"Invalid trace record type '"+recordType.String()+"'. Allowed values: MATERIAL_RECEIPT, PROCESSING, ASSEMBLY, SHIPMENT")
	}
	if referenceType == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference type cannot be empty")
	}
	if referenceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference ID cannot be empty")
	}

	return &TraceRecord{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		RecordType:           recordType,
		ReferenceType:        referenceType,
		ReferenceID:          referenceID,
		Description:          description,
		RecordedAt:           time.Now(),
	}, nil
}

// LinkParent attaches the record to its upstream parent
func (r *TraceRecord) LinkParent(parentID uuid.UUID) error {
	if parentID == uuid.Nil {
		return shared.NewDomainError("INVALID_PARENT", "Parent ID cannot be empty")
	}
	if parentID == r.ID {
		return shared.NewDomainError("INVALID_PARENT", "A record cannot be its own parent")
	}

	r.ParentID = &parentID
	r.UpdatedAt = time.Now()
	return nil
}
