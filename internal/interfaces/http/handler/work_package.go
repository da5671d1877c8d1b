package handler

import (
	productionapp "github.com/fabmate/backend/internal/application/production"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WorkPackageHandler handles work package API endpoints
type WorkPackageHandler struct {
	BaseHandler
	workPackageService *productionapp.WorkPackageService
}

// NewWorkPackageHandler creates a new WorkPackageHandler
func NewWorkPackageHandler(workPackageService *productionapp.WorkPackageService) *WorkPackageHandler {
	return &WorkPackageHandler{
		workPackageService: workPackageService,
	}
}

// Create godoc
// @ID           createWorkPackage
// @Summary      Create a new work package
// @Description  Create a work package under a confirmed order
// @Tags         work-packages
// @Accept       json
// @Produce      json
// @Param        request body production.CreateWorkPackageRequest true "Work package creation request"
// @Success      201 {object} APIResponse[production.WorkPackageResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-packages [post]
func (h *WorkPackageHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	var req productionapp.CreateWorkPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var createdBy *uuid.UUID
	if userID, err := getUserID(c); err == nil {
		createdBy = &userID
	}

	wp, err := h.workPackageService.Create(c.Request.Context(), companyID, req, createdBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, wp)
}

// GetByID godoc
// @ID           getWorkPackageById
// @Summary      Get work package by ID
// @Description  Retrieve a work package by its ID
// @Tags         work-packages
// @Produce      json
// @Param        id path string true "Work package ID" format(uuid)
// @Success      200 {object} APIResponse[production.WorkPackageResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-packages/{id} [get]
func (h *WorkPackageHandler) GetByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workPackageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work package ID format")
		return
	}

	wp, err := h.workPackageService.GetByID(c.Request.Context(), companyID, workPackageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wp)
}

// List godoc
// @ID           listWorkPackages
// @Summary      List work packages
// @Description  Retrieve a paginated list of work packages with optional filtering
// @Tags         work-packages
// @Produce      json
// @Param        order_id query string false "Filter by order ID" format(uuid)
// @Param        status query string false "Work package status" Enums(draft, ready, in_progress, complete, cancelled)
// @Param        priority query string false "Priority" Enums(low, normal, high, urgent)
// @Param        search query string false "Search term (package number, name)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]production.WorkPackageResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-packages [get]
func (h *WorkPackageHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	var req productionapp.ListWorkPackagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	packages, total, err := h.workPackageService.List(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, packages, total, req.Page, req.PageSize)
}

// Update godoc
// @ID           updateWorkPackage
// @Summary      Update a work package
// @Description  Update a work package's details while it is not complete or cancelled
// @Tags         work-packages
// @Accept       json
// @Produce      json
// @Param        id path string true "Work package ID" format(uuid)
// @Param        request body production.UpdateWorkPackageRequest true "Work package update request"
// @Success      200 {object} APIResponse[production.WorkPackageResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-packages/{id} [put]
func (h *WorkPackageHandler) Update(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workPackageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work package ID format")
		return
	}

	var req productionapp.UpdateWorkPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wp, err := h.workPackageService.Update(c.Request.Context(), companyID, workPackageID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wp)
}

// Transition godoc
// @ID           transitionWorkPackage
// @Summary      Transition work package status
// @Description  Move a work package to a new lifecycle status
// @Tags         work-packages
// @Accept       json
// @Produce      json
// @Param        id path string true "Work package ID" format(uuid)
// @Param        request body production.TransitionWorkPackageRequest true "Target status"
// @Success      200 {object} APIResponse[production.WorkPackageResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-packages/{id}/transition [post]
func (h *WorkPackageHandler) Transition(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workPackageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work package ID format")
		return
	}

	var req productionapp.TransitionWorkPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wp, err := h.workPackageService.Transition(c.Request.Context(), companyID, workPackageID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wp)
}

// Delete godoc
// @ID           deleteWorkPackage
// @Summary      Delete a work package
// @Description  Delete a work package along with its work orders, drawings and measurements. Rejected when any work order is in progress.
// @Tags         work-packages
// @Produce      json
// @Param        id path string true "Work package ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-packages/{id} [delete]
func (h *WorkPackageHandler) Delete(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workPackageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work package ID format")
		return
	}

	if err := h.workPackageService.Delete(c.Request.Context(), companyID, workPackageID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
