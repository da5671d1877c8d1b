package handler

import (
	identityapp "github.com/fabmate/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvitationHandler handles user invitation API endpoints
type InvitationHandler struct {
	BaseHandler
	invitationService *identityapp.InvitationService
}

// NewInvitationHandler creates a new InvitationHandler
func NewInvitationHandler(invitationService *identityapp.InvitationService) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
	}
}

// Create godoc
// @ID           createInvitation
// @Summary      Invite a user
// @Description  Create an invitation for a new user to join the company. An invitation email is sent when mail delivery is configured.
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        request body identity.CreateInvitationRequest true "Invitation creation request"
// @Success      201 {object} APIResponse[identity.InvitationResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invitations [post]
func (h *InvitationHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	invitedBy, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Missing user identity")
		return
	}

	var req identityapp.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invitation, err := h.invitationService.Create(c.Request.Context(), companyID, invitedBy, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invitation)
}

// List godoc
// @ID           listInvitations
// @Summary      List invitations
// @Description  Retrieve a paginated list of the company's pending and past invitations
// @Tags         invitations
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]identity.InvitationResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invitations [get]
func (h *InvitationHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	page, pageSize := getPagination(c)

	invitations, err := h.invitationService.List(c.Request.Context(), companyID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invitations)
}

// Revoke godoc
// @ID           revokeInvitation
// @Summary      Revoke an invitation
// @Description  Revoke a pending invitation so its token can no longer be accepted
// @Tags         invitations
// @Produce      json
// @Param        id path string true "Invitation ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invitations/{id} [delete]
func (h *InvitationHandler) Revoke(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	invitationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invitation ID format")
		return
	}

	if err := h.invitationService.Revoke(c.Request.Context(), companyID, invitationID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Accept godoc
// @ID           acceptInvitation
// @Summary      Accept an invitation
// @Description  Accept an invitation token and create the invited user account. Public endpoint.
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        request body identity.AcceptInvitationRequest true "Invitation acceptance request"
// @Success      201 {object} APIResponse[identity.UserResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /invitations/accept [post]
func (h *InvitationHandler) Accept(c *gin.Context) {
	var req identityapp.AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	user, err := h.invitationService.Accept(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}
