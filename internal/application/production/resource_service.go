package production

import (
	"context"

	"github.com/fabmate/backend/internal/domain/production"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ResourceService handles resource master data operations
type ResourceService struct {
	resourceRepo production.ResourceRepository
}

// NewResourceService creates a new ResourceService
func NewResourceService(resourceRepo production.ResourceRepository) *ResourceService {
	return &ResourceService{resourceRepo: resourceRepo}
}

// Create creates a new resource
func (s *ResourceService) Create(ctx context.Context, companyID uuid.UUID, req CreateResourceRequest) (*ResourceResponse, error) {
	resource, err := production.NewResource(companyID, req.Name, production.ResourceType(req.Type), req.HourlyRate)
	if err != nil {
		return nil, err
	}

	if err := s.resourceRepo.Save(ctx, resource); err != nil {
		return nil, err
	}

	response := ToResourceResponse(resource)
	return &response, nil
}

// GetByID retrieves a resource by ID
func (s *ResourceService) GetByID(ctx context.Context, companyID, resourceID uuid.UUID) (*ResourceResponse, error) {
	resource, err := s.resourceRepo.FindByIDForCompany(ctx, companyID, resourceID)
	if err != nil {
		return nil, err
	}
	response := ToResourceResponse(resource)
	return &response, nil
}

// List retrieves resources with pagination
func (s *ResourceService) List(ctx context.Context, companyID uuid.UUID, page, pageSize int, search string) ([]ResourceResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	filter := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   search,
	}

	resources, err := s.resourceRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.resourceRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ResourceResponse, len(resources))
	for i := range resources {
		responses[i] = ToResourceResponse(&resources[i])
	}
	return responses, total, nil
}

// Update updates a resource's mutable fields
func (s *ResourceService) Update(ctx context.Context, companyID, resourceID uuid.UUID, req UpdateResourceRequest) (*ResourceResponse, error) {
	resource, err := s.resourceRepo.FindByIDForCompany(ctx, companyID, resourceID)
	if err != nil {
		return nil, err
	}

	name := resource.Name
	if req.Name != nil {
		name = *req.Name
	}
	hourlyRate := resource.HourlyRate
	if req.HourlyRate != nil {
		hourlyRate = *req.HourlyRate
	}

	if err := resource.Update(name, hourlyRate); err != nil {
		return nil, err
	}

	if req.IsActive != nil {
		if *req.IsActive {
			resource.Activate()
		} else {
			resource.Deactivate()
		}
	}

	if err := s.resourceRepo.Save(ctx, resource); err != nil {
		return nil, err
	}

	response := ToResourceResponse(resource)
	return &response, nil
}

// Delete removes a resource
func (s *ResourceService) Delete(ctx context.Context, companyID, resourceID uuid.UUID) error {
	if _, err := s.resourceRepo.FindByIDForCompany(ctx, companyID, resourceID); err != nil {
		return err
	}
	return s.resourceRepo.DeleteForCompany(ctx, companyID, resourceID)
}
