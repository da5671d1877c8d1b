package production

import (
	"context"
	"errors"

	"github.com/fabmate/backend/internal/domain/production"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WorkCenterService handles work center master data operations
type WorkCenterService struct {
	workCenterRepo production.WorkCenterRepository
}

// NewWorkCenterService creates a new WorkCenterService
func NewWorkCenterService(workCenterRepo production.WorkCenterRepository) *WorkCenterService {
	return &WorkCenterService{workCenterRepo: workCenterRepo}
}

// Create creates a new work center
func (s *WorkCenterService) Create(ctx context.Context, companyID uuid.UUID, req CreateWorkCenterRequest) (*WorkCenterResponse, error) {
	existing, err := s.workCenterRepo.FindByCode(ctx, companyID, req.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_CODE", "A work center with this code already exists")
	}

	wc, err := production.NewWorkCenter(companyID, req.Code, req.Name, req.HourlyRate, req.Capacity)
	if err != nil {
		return nil, err
	}

	if err := s.workCenterRepo.Save(ctx, wc); err != nil {
		return nil, err
	}

	response := ToWorkCenterResponse(wc)
	return &response, nil
}

// GetByID retrieves a work center by ID
func (s *WorkCenterService) GetByID(ctx context.Context, companyID, workCenterID uuid.UUID) (*WorkCenterResponse, error) {
	wc, err := s.workCenterRepo.FindByIDForCompany(ctx, companyID, workCenterID)
	if err != nil {
		return nil, err
	}
	response := ToWorkCenterResponse(wc)
	return &response, nil
}

// List retrieves work centers with pagination
func (s *WorkCenterService) List(ctx context.Context, companyID uuid.UUID, page, pageSize int, search string) ([]WorkCenterResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	filter := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "code",
		OrderDir: "asc",
		Search:   search,
	}

	centers, err := s.workCenterRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.workCenterRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]WorkCenterResponse, len(centers))
	for i := range centers {
		responses[i] = ToWorkCenterResponse(&centers[i])
	}
	return responses, total, nil
}

// Update updates a work center's mutable fields
func (s *WorkCenterService) Update(ctx context.Context, companyID, workCenterID uuid.UUID, req UpdateWorkCenterRequest) (*WorkCenterResponse, error) {
	wc, err := s.workCenterRepo.FindByIDForCompany(ctx, companyID, workCenterID)
	if err != nil {
		return nil, err
	}

	name := wc.Name
	if req.Name != nil {
		name = *req.Name
	}
	hourlyRate := wc.HourlyRate
	if req.HourlyRate != nil {
		hourlyRate = *req.HourlyRate
	}
	capacity := wc.Capacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}

	if err := wc.Update(name, hourlyRate, capacity); err != nil {
		return nil, err
	}

	if req.IsActive != nil {
		if *req.IsActive {
			wc.Activate()
		} else {
			wc.Deactivate()
		}
	}

	if err := s.workCenterRepo.Save(ctx, wc); err != nil {
		return nil, err
	}

	response := ToWorkCenterResponse(wc)
	return &response, nil
}

// Delete removes a work center
func (s *WorkCenterService) Delete(ctx context.Context, companyID, workCenterID uuid.UUID) error {
	if _, err := s.workCenterRepo.FindByIDForCompany(ctx, companyID, workCenterID); err != nil {
		return err
	}
	return s.workCenterRepo.DeleteForCompany(ctx, companyID, workCenterID)
}
