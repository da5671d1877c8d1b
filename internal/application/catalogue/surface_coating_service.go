package catalogue

import (
	"context"
	"errors"

	"github.com/fabmate/backend/internal/domain/catalogue"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SurfaceCoatingService handles surface coating master data operations
type SurfaceCoatingService struct {
	coatingRepo catalogue.SurfaceCoatingRepository
}

// NewSurfaceCoatingService creates a new SurfaceCoatingService
func NewSurfaceCoatingService(coatingRepo catalogue.SurfaceCoatingRepository) *SurfaceCoatingService {
	return &SurfaceCoatingService{coatingRepo: coatingRepo}
}

// Create creates a new surface coating
func (s *SurfaceCoatingService) Create(ctx context.Context, companyID uuid.UUID, req CreateSurfaceCoatingRequest) (*SurfaceCoatingResponse, error) {
	existing, err := s.coatingRepo.FindByCode(ctx, companyID, req.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_CODE", "A surface coating with this code already exists")
	}

	coating, err := catalogue.NewSurfaceCoating(companyID, req.Code, req.Name, req.CostPerSquareMetre)
	if err != nil {
		return nil, err
	}

	if err := s.coatingRepo.Save(ctx, coating); err != nil {
		return nil, err
	}

	response := ToSurfaceCoatingResponse(coating)
	return &response, nil
}

// GetByID retrieves a surface coating by ID
func (s *SurfaceCoatingService) GetByID(ctx context.Context, companyID, coatingID uuid.UUID) (*SurfaceCoatingResponse, error) {
	coating, err := s.coatingRepo.FindByIDForCompany(ctx, companyID, coatingID)
	if err != nil {
		return nil, err
	}
	response := ToSurfaceCoatingResponse(coating)
	return &response, nil
}

// List retrieves surface coatings with pagination
func (s *SurfaceCoatingService) List(ctx context.Context, companyID uuid.UUID, page, pageSize int, search string) ([]SurfaceCoatingResponse, int64, error) {
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

	coatings, err := s.coatingRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.coatingRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SurfaceCoatingResponse, len(coatings))
	for i := range coatings {
		responses[i] = ToSurfaceCoatingResponse(&coatings[i])
	}
	return responses, total, nil
}

// Update updates a surface coating's mutable fields
func (s *SurfaceCoatingService) Update(ctx context.Context, companyID, coatingID uuid.UUID, req UpdateSurfaceCoatingRequest) (*SurfaceCoatingResponse, error) {
	coating, err := s.coatingRepo.FindByIDForCompany(ctx, companyID, coatingID)
	if err != nil {
		return nil, err
	}

	name := coating.Name
	if req.Name != nil {
		name = *req.Name
	}
	cost := coating.CostPerSquareMetre
	if req.CostPerSquareMetre != nil {
		cost = *req.CostPerSquareMetre
	}

	if err := coating.Update(name, cost); err != nil {
		return nil, err
	}

	if req.IsActive != nil && !*req.IsActive {
		coating.Deactivate()
	}

	if err := s.coatingRepo.Save(ctx, coating); err != nil {
		return nil, err
	}

	response := ToSurfaceCoatingResponse(coating)
	return &response, nil
}

// Delete removes a surface coating
func (s *SurfaceCoatingService) Delete(ctx context.Context, companyID, coatingID uuid.UUID) error {
	if _, err := s.coatingRepo.FindByIDForCompany(ctx, companyID, coatingID); err != nil {
		return err
	}
	return s.coatingRepo.DeleteForCompany(ctx, companyID, coatingID)
}
