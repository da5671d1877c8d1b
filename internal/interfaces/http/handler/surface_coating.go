package handler

import (
	catalogueapp "github.com/fabmate/backend/internal/application/catalogue"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SurfaceCoatingHandler handles surface coating API endpoints
type SurfaceCoatingHandler struct {
	BaseHandler
	coatingService *catalogueapp.SurfaceCoatingService
}

// NewSurfaceCoatingHandler creates a new SurfaceCoatingHandler
func NewSurfaceCoatingHandler(coatingService *catalogueapp.SurfaceCoatingService) *SurfaceCoatingHandler {
	return &SurfaceCoatingHandler{
		coatingService: coatingService,
	}
}

// Create godoc
// @ID           createSurfaceCoating
// @Summary      Create a new surface coating
// @Description  Create a surface coating priced per square metre
// @Tags         surface-coatings
// @Accept       json
// @Produce      json
// @Param        request body catalogue.CreateSurfaceCoatingRequest true "Surface coating creation request"
// @Success      201 {object} APIResponse[catalogue.SurfaceCoatingResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /surface-coatings [post]
func (h *SurfaceCoatingHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	var req catalogueapp.CreateSurfaceCoatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	coating, err := h.coatingService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, coating)
}

// GetByID godoc
// @ID           getSurfaceCoatingById
// @Summary      Get surface coating by ID
// @Tags         surface-coatings
// @Produce      json
// @Param        id path string true "Surface coating ID" format(uuid)
// @Success      200 {object} APIResponse[catalogue.SurfaceCoatingResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /surface-coatings/{id} [get]
func (h *SurfaceCoatingHandler) GetByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	coatingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid surface coating ID format")
		return
	}

	coating, err := h.coatingService.GetByID(c.Request.Context(), companyID, coatingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, coating)
}

// List godoc
// @ID           listSurfaceCoatings
// @Summary      List surface coatings
// @Description  Retrieve a paginated list of surface coatings with optional search
// @Tags         surface-coatings
// @Produce      json
// @Param        search query string false "Search term (code, name)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]catalogue.SurfaceCoatingResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /surface-coatings [get]
func (h *SurfaceCoatingHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	page, pageSize := getPagination(c)
	search := c.Query("search")

	coatings, total, err := h.coatingService.List(c.Request.Context(), companyID, page, pageSize, search)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, coatings, total, page, pageSize)
}

// Update godoc
// @ID           updateSurfaceCoating
// @Summary      Update a surface coating
// @Tags         surface-coatings
// @Accept       json
// @Produce      json
// @Param        id path string true "Surface coating ID" format(uuid)
// @Param        request body catalogue.UpdateSurfaceCoatingRequest true "Surface coating update request"
// @Success      200 {object} APIResponse[catalogue.SurfaceCoatingResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /surface-coatings/{id} [put]
func (h *SurfaceCoatingHandler) Update(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	coatingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid surface coating ID format")
		return
	}

	var req catalogueapp.UpdateSurfaceCoatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	coating, err := h.coatingService.Update(c.Request.Context(), companyID, coatingID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, coating)
}

// Delete godoc
// @ID           deleteSurfaceCoating
// @Summary      Delete a surface coating
// @Tags         surface-coatings
// @Produce      json
// @Param        id path string true "Surface coating ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /surface-coatings/{id} [delete]
func (h *SurfaceCoatingHandler) Delete(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	coatingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid surface coating ID format")
		return
	}

	if err := h.coatingService.Delete(c.Request.Context(), companyID, coatingID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
