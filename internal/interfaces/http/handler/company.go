package handler

import (
	identityapp "github.com/fabmate/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// CompanyHandler handles company profile API endpoints
type CompanyHandler struct {
	BaseHandler
	companyService *identityapp.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyService *identityapp.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
	}
}

// GetCurrent godoc
// @ID           getCurrentCompany
// @Summary      Get current company
// @Description  Retrieve the profile of the authenticated user's company
// @Tags         company
// @Produce      json
// @Success      200 {object} APIResponse[identity.CompanyResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /company [get]
func (h *CompanyHandler) GetCurrent(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	company, err := h.companyService.GetCurrent(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, company)
}

// Update godoc
// @ID           updateCompany
// @Summary      Update current company
// @Description  Update the profile of the authenticated user's company
// @Tags         company
// @Accept       json
// @Produce      json
// @Param        request body identity.UpdateCompanyRequest true "Company update request"
// @Success      200 {object} APIResponse[identity.CompanyResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /company [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	var req identityapp.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	company, err := h.companyService.Update(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, company)
}
