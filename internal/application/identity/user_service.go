package identity

import (
	"context"

	"github.com/fabmate/backend/internal/domain/identity"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles user administration within a company
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, companyID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForCompany(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// List retrieves the company's users with pagination
func (s *UserService) List(ctx context.Context, companyID uuid.UUID, page, pageSize int, search string) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	filter := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Search:   search,
	}

	users, err := s.userRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.userRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	return responses, total, nil
}

// Update updates a user's display name and role
func (s *UserService) Update(ctx context.Context, companyID, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForCompany(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		if err := user.SetDisplayName(*req.DisplayName); err != nil {
			return nil, err
		}
	}
	if req.Role != nil {
		newRole := identity.UserRole(*req.Role)
		if user.Role == identity.UserRoleAdmin && newRole != identity.UserRoleAdmin {
			if err := s.ensureNotLastAdmin(ctx, companyID, userID); err != nil {
				return nil, err
			}
		}
		if err := user.SetRole(newRole); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// Activate re-activates a deactivated or locked user
func (s *UserService) Activate(ctx context.Context, companyID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForCompany(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}

	if user.IsLocked() {
		if err := user.Unlock(); err != nil {
			return nil, err
		}
	} else if err := user.Activate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User activated", zap.String("user_id", userID.String()))

	response := ToUserResponse(user)
	return &response, nil
}

// Deactivate deactivates a user. The last admin of a company cannot be
// deactivated.
func (s *UserService) Deactivate(ctx context.Context, companyID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForCompany(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}

	if user.Role == identity.UserRoleAdmin {
		if err := s.ensureNotLastAdmin(ctx, companyID, userID); err != nil {
			return nil, err
		}
	}

	if err := user.Deactivate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User deactivated", zap.String("user_id", userID.String()))

	response := ToUserResponse(user)
	return &response, nil
}

// Delete removes a user from the company
func (s *UserService) Delete(ctx context.Context, companyID, userID uuid.UUID) error {
	user, err := s.userRepo.FindByIDForCompany(ctx, companyID, userID)
	if err != nil {
		return err
	}

	if user.Role == identity.UserRoleAdmin {
		if err := s.ensureNotLastAdmin(ctx, companyID, userID); err != nil {
			return err
		}
	}

	return s.userRepo.DeleteForCompany(ctx, companyID, userID)
}

// ensureNotLastAdmin rejects the operation when userID is the company's only
// active admin
func (s *UserService) ensureNotLastAdmin(ctx context.Context, companyID, userID uuid.UUID) error {
	admins, err := s.userRepo.FindAllForCompany(ctx, companyID, shared.Filter{
		Filters: map[string]interface{}{"role": string(identity.UserRoleAdmin)},
	})
	if err != nil {
		return err
	}

	for i := range admins {
		if admins[i].ID != userID && admins[i].Status == identity.UserStatusActive {
			return nil
		}
	}
	return shared.NewDomainError("LAST_ADMIN", "A company must keep at least one active admin")
}
