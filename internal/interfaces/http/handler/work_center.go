package handler

import (
	productionapp "github.com/fabmate/backend/internal/application/production"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WorkCenterHandler handles work center API endpoints
type WorkCenterHandler struct {
	BaseHandler
	workCenterService *productionapp.WorkCenterService
}

// NewWorkCenterHandler creates a new WorkCenterHandler
func NewWorkCenterHandler(workCenterService *productionapp.WorkCenterService) *WorkCenterHandler {
	return &WorkCenterHandler{
		workCenterService: workCenterService,
	}
}

// Create godoc
// @ID           createWorkCenter
// @Summary      Create a new work center
// @Description  Create a work center with an hourly rate and capacity
// @Tags         work-centers
// @Accept       json
// @Produce      json
// @Param        request body production.CreateWorkCenterRequest true "Work center creation request"
// @Success      201 {object} APIResponse[production.WorkCenterResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-centers [post]
func (h *WorkCenterHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	var req productionapp.CreateWorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wc, err := h.workCenterService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, wc)
}

// GetByID godoc
// @ID           getWorkCenterById
// @Summary      Get work center by ID
// @Tags         work-centers
// @Produce      json
// @Param        id path string true "Work center ID" format(uuid)
// @Success      200 {object} APIResponse[production.WorkCenterResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-centers/{id} [get]
func (h *WorkCenterHandler) GetByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workCenterID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work center ID format")
		return
	}

	wc, err := h.workCenterService.GetByID(c.Request.Context(), companyID, workCenterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wc)
}

// List godoc
// @ID           listWorkCenters
// @Summary      List work centers
// @Description  Retrieve a paginated list of work centers with optional search
// @Tags         work-centers
// @Produce      json
// @Param        search query string false "Search term (code, name)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]production.WorkCenterResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-centers [get]
func (h *WorkCenterHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	page, pageSize := getPagination(c)
	search := c.Query("search")

	centers, total, err := h.workCenterService.List(c.Request.Context(), companyID, page, pageSize, search)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, centers, total, page, pageSize)
}

// Update godoc
// @ID           updateWorkCenter
// @Summary      Update a work center
// @Tags         work-centers
// @Accept       json
// @Produce      json
// @Param        id path string true "Work center ID" format(uuid)
// @Param        request body production.UpdateWorkCenterRequest true "Work center update request"
// @Success      200 {object} APIResponse[production.WorkCenterResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-centers/{id} [put]
func (h *WorkCenterHandler) Update(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workCenterID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work center ID format")
		return
	}

	var req productionapp.UpdateWorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wc, err := h.workCenterService.Update(c.Request.Context(), companyID, workCenterID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wc)
}

// Delete godoc
// @ID           deleteWorkCenter
// @Summary      Delete a work center
// @Description  Delete a work center that has no assigned work orders
// @Tags         work-centers
// @Produce      json
// @Param        id path string true "Work center ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-centers/{id} [delete]
func (h *WorkCenterHandler) Delete(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workCenterID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work center ID format")
		return
	}

	if err := h.workCenterService.Delete(c.Request.Context(), companyID, workCenterID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
