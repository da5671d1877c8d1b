package trace

import (
	"context"
	"errors"

	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/fabmate/backend/internal/domain/trace"
	"github.com/google/uuid"
)

// MaxLineageDepth bounds lineage traversals so a corrupted parent chain
// cannot loop forever
const MaxLineageDepth = 50

// TraceService handles genealogy record operations and lineage traversal
type TraceService struct {
	recordRepo trace.TraceRecordRepository
}

// NewTraceService creates a new TraceService
func NewTraceService(recordRepo trace.TraceRecordRepository) *TraceService {
	return &TraceService{recordRepo: recordRepo}
}

// Create records a genealogy event, optionally linked to an upstream parent
func (s *TraceService) Create(ctx context.Context, companyID uuid.UUID, req CreateTraceRecordRequest, recordedBy *uuid.UUID) (*TraceRecordResponse, error) {
	record, err := trace.NewTraceRecord(companyID, trace.RecordType(req.RecordType),
		req.ReferenceType, req.ReferenceID, req.Description)
	if err != nil {
		return nil, err
	}
	if recordedBy != nil {
		record.SetCreatedBy(*recordedBy)
	}

	if req.ParentID != nil {
		if _, err := s.recordRepo.FindByIDForCompany(ctx, companyID, *req.ParentID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("PARENT_NOT_FOUND", "Parent trace record not found")
			}
			return nil, err
		}
		if err := record.LinkParent(*req.ParentID); err != nil {
			return nil, err
		}
	}

	if err := s.recordRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	response := ToTraceRecordResponse(record)
	return &response, nil
}

// GetByID retrieves a trace record by ID
func (s *TraceService) GetByID(ctx context.Context, companyID, recordID uuid.UUID) (*TraceRecordResponse, error) {
	record, err := s.recordRepo.FindByIDForCompany(ctx, companyID, recordID)
	if err != nil {
		return nil, err
	}
	response := ToTraceRecordResponse(record)
	return &response, nil
}

// List retrieves trace records with filtering and pagination
func (s *TraceService) List(ctx context.Context, companyID uuid.UUID, req ListTraceRecordsRequest) ([]TraceRecordResponse, int64, error) {
	// Set defaults
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.OrderBy == "" {
		req.OrderBy = "recorded_at"
	}
	if req.OrderDir == "" {
		req.OrderDir = "desc"
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Filters:  map[string]interface{}{},
	}
	if req.RecordType != "" {
		recordType := trace.RecordType(req.RecordType)
		if !recordType.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_RECORD_TYPE", "Invalid trace record type filter")
		}
		filter.Filters["record_type"] = string(recordType)
	}
	if req.ReferenceType != "" {
		filter.Filters["reference_type"] = req.ReferenceType
	}
	if req.ReferenceID != "" {
		referenceID, err := uuid.Parse(req.ReferenceID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_REFERENCE_ID", "Invalid reference ID filter")
		}
		filter.Filters["reference_id"] = referenceID
	}

	records, err := s.recordRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.recordRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	return ToTraceRecordResponses(records), total, nil
}

// FindByReference lists records anchored to an entity
func (s *TraceService) FindByReference(ctx context.Context, companyID uuid.UUID, referenceType string, referenceID uuid.UUID) ([]TraceRecordResponse, error) {
	records, err := s.recordRepo.FindByReference(ctx, companyID, referenceType, referenceID)
	if err != nil {
		return nil, err
	}
	return ToTraceRecordResponses(records), nil
}

// GetLineage walks the genealogy in both directions from a record: ancestors
// by following parent links, descendants breadth-first through children.
// Visited sets guard against cycles in corrupted data.
func (s *TraceService) GetLineage(ctx context.Context, companyID, recordID uuid.UUID) (*LineageResponse, error) {
	record, err := s.recordRepo.FindByIDForCompany(ctx, companyID, recordID)
	if err != nil {
		return nil, err
	}

	visited := map[uuid.UUID]bool{record.ID: true}

	ancestors := make([]LineageNodeResponse, 0)
	current := record
	for depth := 1; current.ParentID != nil && depth <= MaxLineageDepth; depth++ {
		parent, err := s.recordRepo.FindByIDForCompany(ctx, companyID, *current.ParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				break
			}
			return nil, err
		}
		if visited[parent.ID] {
			break
		}
		visited[parent.ID] = true
		ancestors = append(ancestors, LineageNodeResponse{
			TraceRecordResponse: ToTraceRecordResponse(parent),
			Depth:               depth,
		})
		current = parent
	}

	descendants := make([]LineageNodeResponse, 0)
	type frontierEntry struct {
		id    uuid.UUID
		depth int
	}
	frontier := []frontierEntry{{id: record.ID, depth: 0}}
	for len(frontier) > 0 {
		entry := frontier[0]
		frontier = frontier[1:]
		if entry.depth >= MaxLineageDepth {
			continue
		}

		children, err := s.recordRepo.FindChildren(ctx, companyID, entry.id)
		if err != nil {
			return nil, err
		}
		for i := range children {
			child := &children[i]
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			descendants = append(descendants, LineageNodeResponse{
				TraceRecordResponse: ToTraceRecordResponse(child),
				Depth:               entry.depth + 1,
			})
			frontier = append(frontier, frontierEntry{id: child.ID, depth: entry.depth + 1})
		}
	}

	return &LineageResponse{
		Record:      ToTraceRecordResponse(record),
		Ancestors:   ancestors,
		Descendants: descendants,
	}, nil
}

// Delete removes a trace record. Records with children are kept so lineage
// chains stay intact.
func (s *TraceService) Delete(ctx context.Context, companyID, recordID uuid.UUID) error {
	if _, err := s.recordRepo.FindByIDForCompany(ctx, companyID, recordID); err != nil {
		return err
	}

	children, err := s.recordRepo.FindChildren(ctx, companyID, recordID)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return shared.NewDomainError("RECORD_HAS_CHILDREN", "Cannot delete a trace record with downstream records")
	}

	return s.recordRepo.DeleteForCompany(ctx, companyID, recordID)
}
