package identity

import (
	"context"

	"github.com/fabmate/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// CompanyService handles company profile management
type CompanyService struct {
	companyRepo identity.CompanyRepository
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo identity.CompanyRepository) *CompanyService {
	return &CompanyService{companyRepo: companyRepo}
}

// GetCurrent retrieves the caller's company profile
func (s *CompanyService) GetCurrent(ctx context.Context, companyID uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	response := ToCompanyResponse(company)
	return &response, nil
}

// Update updates the company profile
func (s *CompanyService) Update(ctx context.Context, companyID uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := company.Update(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.ContactName != nil || req.ContactPhone != nil || req.ContactEmail != nil {
		name := company.ContactName
		phone := company.ContactPhone
		email := company.ContactEmail
		if req.ContactName != nil {
			name = *req.ContactName
		}
		if req.ContactPhone != nil {
			phone = *req.ContactPhone
		}
		if req.ContactEmail != nil {
			email = *req.ContactEmail
		}
		company.SetContact(name, phone, email)
	}
	if req.Address != nil {
		company.SetAddress(*req.Address)
	}
	if req.Notes != nil {
		company.Notes = *req.Notes
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}

	response := ToCompanyResponse(company)
	return &response, nil
}
