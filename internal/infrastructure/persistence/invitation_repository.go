package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/fabmate/backend/internal/domain/identity"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvitationRepository implements InvitationRepository using GORM
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewGormInvitationRepository creates a new GormInvitationRepository
func NewGormInvitationRepository(db *gorm.DB) *GormInvitationRepository {
	return &GormInvitationRepository{db: db}
}

// FindByIDForCompany finds an invitation by ID within a company
func (r *GormInvitationRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*identity.Invitation, error) {
	var invitation identity.Invitation
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invitation, nil
}

// FindByToken finds an invitation by its token
func (r *GormInvitationRepository) FindByToken(ctx context.Context, token string) (*identity.Invitation, error) {
	var invitation identity.Invitation
	if err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invitation, nil
}

// FindPendingByEmail finds a pending invitation for an email within a company
func (r *GormInvitationRepository) FindPendingByEmail(ctx context.Context, companyID uuid.UUID, email string) (*identity.Invitation, error) {
	var invitation identity.Invitation
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND email = ? AND status = ?",
			companyID, strings.ToLower(strings.TrimSpace(email)), identity.InvitationStatusPending).
		First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invitation, nil
}

// FindAllForCompany lists invitations in a company
func (r *GormInvitationRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]identity.Invitation, error) {
	var invitations []identity.Invitation
	query := r.db.WithContext(ctx).Model(&identity.Invitation{}).Where("company_id = ?", companyID)

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Order("created_at DESC").Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// Save creates or updates an invitation
func (r *GormInvitationRepository) Save(ctx context.Context, invitation *identity.Invitation) error {
	return r.db.WithContext(ctx).Save(invitation).Error
}

// DeleteForCompany deletes an invitation
func (r *GormInvitationRepository) DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&identity.Invitation{}, "company_id = ? AND id = ?", companyID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
