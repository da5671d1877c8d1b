package production

import (
	"context"

	"github.com/fabmate/backend/internal/domain/production"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RoutingTemplateService handles routing template operations
type RoutingTemplateService struct {
	templateRepo production.RoutingTemplateRepository
}

// NewRoutingTemplateService creates a new RoutingTemplateService
func NewRoutingTemplateService(templateRepo production.RoutingTemplateRepository) *RoutingTemplateService {
	return &RoutingTemplateService{templateRepo: templateRepo}
}

// Create creates a new routing template with its lines
func (s *RoutingTemplateService) Create(ctx context.Context, companyID uuid.UUID, req CreateRoutingTemplateRequest) (*RoutingTemplateResponse, error) {
	template, err := production.NewRoutingTemplate(companyID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}

	for _, line := range req.Lines {
		if err := template.AddLine(line.SequenceNumber, line.OperationCode, line.OperationName,
			line.PlannedSetupMinutes, line.PlannedRunMinutes); err != nil {
			return nil, err
		}
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	response := ToRoutingTemplateResponse(template)
	return &response, nil
}

// GetByID retrieves a routing template by ID
func (s *RoutingTemplateService) GetByID(ctx context.Context, companyID, templateID uuid.UUID) (*RoutingTemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForCompany(ctx, companyID, templateID)
	if err != nil {
		return nil, err
	}
	response := ToRoutingTemplateResponse(template)
	return &response, nil
}

// List retrieves routing templates with pagination
func (s *RoutingTemplateService) List(ctx context.Context, companyID uuid.UUID, page, pageSize int, search string) ([]RoutingTemplateResponse, int64, error) {
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

	templates, err := s.templateRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.templateRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]RoutingTemplateResponse, len(templates))
	for i := range templates {
		responses[i] = ToRoutingTemplateResponse(&templates[i])
	}
	return responses, total, nil
}

// AddLine appends an operation to a routing template
func (s *RoutingTemplateService) AddLine(ctx context.Context, companyID, templateID uuid.UUID, req RoutingTemplateLineInput) (*RoutingTemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForCompany(ctx, companyID, templateID)
	if err != nil {
		return nil, err
	}

	if err := template.AddLine(req.SequenceNumber, req.OperationCode, req.OperationName,
		req.PlannedSetupMinutes, req.PlannedRunMinutes); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	response := ToRoutingTemplateResponse(template)
	return &response, nil
}

// RemoveLine removes an operation from a routing template
func (s *RoutingTemplateService) RemoveLine(ctx context.Context, companyID, templateID, lineID uuid.UUID) (*RoutingTemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForCompany(ctx, companyID, templateID)
	if err != nil {
		return nil, err
	}

	if err := template.RemoveLine(lineID); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	response := ToRoutingTemplateResponse(template)
	return &response, nil
}

// Delete removes a routing template
func (s *RoutingTemplateService) Delete(ctx context.Context, companyID, templateID uuid.UUID) error {
	if _, err := s.templateRepo.FindByIDForCompany(ctx, companyID, templateID); err != nil {
		return err
	}
	return s.templateRepo.DeleteForCompany(ctx, companyID, templateID)
}
