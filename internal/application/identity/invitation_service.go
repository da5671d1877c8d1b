package identity

import (
	"context"
	"errors"

	"github.com/fabmate/backend/internal/domain/identity"
	"github.com/fabmate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mailer delivers invitation emails
type Mailer interface {
	SendInvitation(ctx context.Context, email, token, companyName, role string) error
}

// InvitationService handles inviting users into a company
type InvitationService struct {
	invitationRepo identity.InvitationRepository
	userRepo       identity.UserRepository
	companyRepo    identity.CompanyRepository
	mailer         Mailer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInvitationService creates a new InvitationService
func NewInvitationService(
	invitationRepo identity.InvitationRepository,
	userRepo identity.UserRepository,
	companyRepo identity.CompanyRepository,
	mailer Mailer,
	logger *zap.Logger,
) *InvitationService {
	return &InvitationService{
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		companyRepo:    companyRepo,
		mailer:         mailer,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *InvitationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create invites an email address to join the company
func (s *InvitationService) Create(ctx context.Context, companyID, invitedBy uuid.UUID, req CreateInvitationRequest) (*InvitationResponse, error) {
	role := identity.UserRole(req.Role)
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE",
			"Invalid role '"+req.Role+"'. Allowed values: admin, member, viewer")
	}

	existing, err := s.userRepo.FindByEmailForCompany(ctx, companyID, req.Email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("USER_EXISTS", "A user with this email already belongs to the company")
	}

	pending, err := s.invitationRepo.FindPendingByEmail(ctx, companyID, req.Email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if pending != nil && !pending.IsExpired() {
		return nil, shared.NewDomainError("INVITATION_PENDING", "An invitation for this email is already pending")
	}

	invitation, err := identity.NewInvitation(companyID, invitedBy, req.Email, role)
	if err != nil {
		return nil, err
	}

	if err := s.invitationRepo.Save(ctx, invitation); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invitation)

	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if s.mailer != nil {
		if err := s.mailer.SendInvitation(ctx, invitation.Email, invitation.Token, company.Name, string(invitation.Role)); err != nil {
			// The invitation stays redeemable; the admin can resend it
			s.logger.Warn("Failed to send invitation email",
				zap.String("email", invitation.Email),
				zap.Error(err))
		}
	}

	response := ToInvitationResponse(invitation)
	return &response, nil
}

// Accept redeems an invitation token and creates the user account
func (s *InvitationService) Accept(ctx context.Context, req AcceptInvitationRequest) (*UserResponse, error) {
	invitation, err := s.invitationRepo.FindByToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_INVITATION", "Invitation token is not valid")
		}
		return nil, err
	}

	if err := invitation.Accept(); err != nil {
		// Persist the expired transition so the token stays dead
		if invitation.Status == identity.InvitationStatusExpired {
			_ = s.invitationRepo.Save(ctx, invitation)
		}
		return nil, err
	}

	user, err := identity.NewActiveUser(invitation.CompanyID, invitation.Email, req.Password, invitation.Role)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != "" {
		if err := user.SetDisplayName(req.DisplayName); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if err := s.invitationRepo.Save(ctx, invitation); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invitation)

	s.logger.Info("Invitation accepted",
		zap.String("company_id", invitation.CompanyID.String()),
		zap.String("email", invitation.Email))

	response := ToUserResponse(user)
	return &response, nil
}

// Revoke withdraws a pending invitation
func (s *InvitationService) Revoke(ctx context.Context, companyID, invitationID uuid.UUID) error {
	invitation, err := s.invitationRepo.FindByIDForCompany(ctx, companyID, invitationID)
	if err != nil {
		return err
	}

	if err := invitation.Revoke(); err != nil {
		return err
	}

	return s.invitationRepo.Save(ctx, invitation)
}

// List retrieves the company's invitations with pagination
func (s *InvitationService) List(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]InvitationResponse, error) {
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
	}

	invitations, err := s.invitationRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]InvitationResponse, len(invitations))
	for i := range invitations {
		responses[i] = ToInvitationResponse(&invitations[i])
	}
	return responses, nil
}

func (s *InvitationService) publishEvents(ctx context.Context, invitation *identity.Invitation) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range invitation.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	invitation.ClearDomainEvents()
}
