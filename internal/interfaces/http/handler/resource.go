package handler

import (
	productionapp "github.com/fabmate/backend/internal/application/production"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ResourceHandler handles production resource API endpoints
type ResourceHandler struct {
	BaseHandler
	resourceService *productionapp.ResourceService
}

// NewResourceHandler creates a new ResourceHandler
func NewResourceHandler(resourceService *productionapp.ResourceService) *ResourceHandler {
	return &ResourceHandler{
		resourceService: resourceService,
	}
}

// Create godoc
// @ID           createResource
// @Summary      Create a new resource
// @Description  Create a labour or machine resource
// @Tags         resources
// @Accept       json
// @Produce      json
// @Param        request body production.CreateResourceRequest true "Resource creation request"
// @Success      201 {object} APIResponse[production.ResourceResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /resources [post]
func (h *ResourceHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	var req productionapp.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resource, err := h.resourceService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resource)
}

// GetByID godoc
// @ID           getResourceById
// @Summary      Get resource by ID
// @Tags         resources
// @Produce      json
// @Param        id path string true "Resource ID" format(uuid)
// @Success      200 {object} APIResponse[production.ResourceResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /resources/{id} [get]
func (h *ResourceHandler) GetByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid resource ID format")
		return
	}

	resource, err := h.resourceService.GetByID(c.Request.Context(), companyID, resourceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resource)
}

// List godoc
// @ID           listResources
// @Summary      List resources
// @Description  Retrieve a paginated list of resources with optional search
// @Tags         resources
// @Produce      json
// @Param        search query string false "Search term (name)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]production.ResourceResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /resources [get]
func (h *ResourceHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	page, pageSize := getPagination(c)
	search := c.Query("search")

	resources, total, err := h.resourceService.List(c.Request.Context(), companyID, page, pageSize, search)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, resources, total, page, pageSize)
}

// Update godoc
// @ID           updateResource
// @Summary      Update a resource
// @Tags         resources
// @Accept       json
// @Produce      json
// @Param        id path string true "Resource ID" format(uuid)
// @Param        request body production.UpdateResourceRequest true "Resource update request"
// @Success      200 {object} APIResponse[production.ResourceResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /resources/{id} [put]
func (h *ResourceHandler) Update(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid resource ID format")
		return
	}

	var req productionapp.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resource, err := h.resourceService.Update(c.Request.Context(), companyID, resourceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resource)
}

// Delete godoc
// @ID           deleteResource
// @Summary      Delete a resource
// @Description  Delete a resource that has no assigned work orders
// @Tags         resources
// @Produce      json
// @Param        id path string true "Resource ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /resources/{id} [delete]
func (h *ResourceHandler) Delete(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid resource ID format")
		return
	}

	if err := h.resourceService.Delete(c.Request.Context(), companyID, resourceID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
