package trace

import (
	"time"

	"github.com/fabmate/backend/internal/domain/trace"
	"github.com/google/uuid"
)

// ==================== Trace Record DTOs ====================

// CreateTraceRecordRequest represents a request to record a genealogy event
type CreateTraceRecordRequest struct {
	RecordType    string     `json:"record_type" binding:"required"`
	ParentID      *uuid.UUID `json:"parent_id"`
	ReferenceType string     `json:"reference_type" binding:"required,min=1,max=50"`
	ReferenceID   uuid.UUID  `json:"reference_id" binding:"required"`
	Description   string     `json:"description" binding:"max=2000"`
}

// ListTraceRecordsRequest represents a request to list trace records
type ListTraceRecordsRequest struct {
	Page          int    `form:"page"`
	PageSize      int    `form:"page_size"`
	RecordType    string `form:"record_type"`
	ReferenceType string `form:"reference_type"`
	ReferenceID   string `form:"reference_id"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir"`
}

// TraceRecordResponse represents a trace record in API responses
type TraceRecordResponse struct {
	ID            uuid.UUID  `json:"id"`
	CompanyID     uuid.UUID  `json:"company_id"`
	RecordType    string     `json:"record_type"`
	ParentID      *uuid.UUID `json:"parent_id"`
	ReferenceType string     `json:"reference_type"`
	ReferenceID   uuid.UUID  `json:"reference_id"`
	Description   string     `json:"description"`
	RecordedAt    time.Time  `json:"recorded_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// LineageNodeResponse is one record in a lineage traversal, carrying its
// distance from the starting record
type LineageNodeResponse struct {
	TraceRecordResponse
	Depth int `json:"depth"`
}

// LineageResponse is the full genealogy of a record in both directions
type LineageResponse struct {
	Record      TraceRecordResponse   `json:"record"`
	Ancestors   []LineageNodeResponse `json:"ancestors"`
	Descendants []LineageNodeResponse `json:"descendants"`
}

// ToTraceRecordResponse converts a domain trace record to a response DTO
func ToTraceRecordResponse(r *trace.TraceRecord) TraceRecordResponse {
	return TraceRecordResponse{
		ID:            r.ID,
		CompanyID:     r.CompanyID,
		RecordType:    string(r.RecordType),
		ParentID:      r.ParentID,
		ReferenceType: r.ReferenceType,
		ReferenceID:   r.ReferenceID,
		Description:   r.Description,
		RecordedAt:    r.RecordedAt,
		CreatedAt:     r.CreatedAt,
	}
}

// ToTraceRecordResponses converts a slice of trace records to response DTOs
func ToTraceRecordResponses(records []trace.TraceRecord) []TraceRecordResponse {
	responses := make([]TraceRecordResponse, len(records))
	for i := range records {
		responses[i] = ToTraceRecordResponse(&records[i])
	}
	return responses
}
