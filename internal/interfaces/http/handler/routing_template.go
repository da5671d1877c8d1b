package handler

import (
	productionapp "github.com/fabmate/backend/internal/application/production"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RoutingTemplateHandler handles routing template API endpoints
type RoutingTemplateHandler struct {
	BaseHandler
	templateService *productionapp.RoutingTemplateService
}

// NewRoutingTemplateHandler creates a new RoutingTemplateHandler
func NewRoutingTemplateHandler(templateService *productionapp.RoutingTemplateService) *RoutingTemplateHandler {
	return &RoutingTemplateHandler{
		templateService: templateService,
	}
}

// Create godoc
// @ID           createRoutingTemplate
// @Summary      Create a new routing template
// @Description  Create a reusable sequence of routing operations
// @Tags         routing-templates
// @Accept       json
// @Produce      json
// @Param        request body production.CreateRoutingTemplateRequest true "Routing template creation request"
// @Success      201 {object} APIResponse[production.RoutingTemplateResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /routing-templates [post]
func (h *RoutingTemplateHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	var req productionapp.CreateRoutingTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	template, err := h.templateService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, template)
}

// GetByID godoc
// @ID           getRoutingTemplateById
// @Summary      Get routing template by ID
// @Tags         routing-templates
// @Produce      json
// @Param        id path string true "Routing template ID" format(uuid)
// @Success      200 {object} APIResponse[production.RoutingTemplateResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /routing-templates/{id} [get]
func (h *RoutingTemplateHandler) GetByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid routing template ID format")
		return
	}

	template, err := h.templateService.GetByID(c.Request.Context(), companyID, templateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, template)
}

// List godoc
// @ID           listRoutingTemplates
// @Summary      List routing templates
// @Description  Retrieve a paginated list of routing templates with optional search
// @Tags         routing-templates
// @Produce      json
// @Param        search query string false "Search term (name)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]production.RoutingTemplateResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /routing-templates [get]
func (h *RoutingTemplateHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	page, pageSize := getPagination(c)
	search := c.Query("search")

	templates, total, err := h.templateService.List(c.Request.Context(), companyID, page, pageSize, search)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, templates, total, page, pageSize)
}

// AddLine godoc
// @ID           addRoutingTemplateLine
// @Summary      Add a template line
// @Description  Append an operation to a routing template
// @Tags         routing-templates
// @Accept       json
// @Produce      json
// @Param        id path string true "Routing template ID" format(uuid)
// @Param        request body production.RoutingTemplateLineInput true "Template line"
// @Success      200 {object} APIResponse[production.RoutingTemplateResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /routing-templates/{id}/lines [post]
func (h *RoutingTemplateHandler) AddLine(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid routing template ID format")
		return
	}

	var req productionapp.RoutingTemplateLineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	template, err := h.templateService.AddLine(c.Request.Context(), companyID, templateID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, template)
}

// RemoveLine godoc
// @ID           removeRoutingTemplateLine
// @Summary      Remove a template line
// @Tags         routing-templates
// @Produce      json
// @Param        id path string true "Routing template ID" format(uuid)
// @Param        lineId path string true "Template line ID" format(uuid)
// @Success      200 {object} APIResponse[production.RoutingTemplateResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /routing-templates/{id}/lines/{lineId} [delete]
func (h *RoutingTemplateHandler) RemoveLine(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid routing template ID format")
		return
	}

	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.BadRequest(c, "Invalid template line ID format")
		return
	}

	template, err := h.templateService.RemoveLine(c.Request.Context(), companyID, templateID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, template)
}

// Delete godoc
// @ID           deleteRoutingTemplate
// @Summary      Delete a routing template
// @Tags         routing-templates
// @Produce      json
// @Param        id path string true "Routing template ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /routing-templates/{id} [delete]
func (h *RoutingTemplateHandler) Delete(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid routing template ID format")
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), companyID, templateID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
