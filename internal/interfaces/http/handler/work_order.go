package handler

import (
	productionapp "github.com/fabmate/backend/internal/application/production"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WorkOrderHandler handles work order API endpoints
type WorkOrderHandler struct {
	BaseHandler
	workOrderService *productionapp.WorkOrderService
}

// NewWorkOrderHandler creates a new WorkOrderHandler
func NewWorkOrderHandler(workOrderService *productionapp.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{
		workOrderService: workOrderService,
	}
}

// Create godoc
// @ID           createWorkOrder
// @Summary      Create a new work order
// @Description  Create a work order under a work package, optionally seeding its routing from a template
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        request body production.CreateWorkOrderRequest true "Work order creation request"
// @Success      201 {object} APIResponse[production.WorkOrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders [post]
func (h *WorkOrderHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	var req productionapp.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var createdBy *uuid.UUID
	if userID, err := getUserID(c); err == nil {
		createdBy = &userID
	}

	wo, err := h.workOrderService.Create(c.Request.Context(), companyID, req, createdBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, wo)
}

// GetByID godoc
// @ID           getWorkOrderById
// @Summary      Get work order by ID
// @Description  Retrieve a work order with its routing lines
// @Tags         work-orders
// @Produce      json
// @Param        id path string true "Work order ID" format(uuid)
// @Success      200 {object} APIResponse[production.WorkOrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id} [get]
func (h *WorkOrderHandler) GetByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work order ID format")
		return
	}

	wo, err := h.workOrderService.GetByID(c.Request.Context(), companyID, workOrderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wo)
}

// List godoc
// @ID           listWorkOrders
// @Summary      List work orders
// @Description  Retrieve a paginated list of work orders with optional filtering
// @Tags         work-orders
// @Produce      json
// @Param        work_package_id query string false "Filter by work package ID" format(uuid)
// @Param        type query string false "Work order type" Enums(fabrication, assembly, treatment, inspection)
// @Param        status query string false "Work order status" Enums(draft, released, in_progress, complete, cancelled)
// @Param        priority query string false "Priority" Enums(low, normal, high, urgent)
// @Param        search query string false "Search term (work order number, description)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]production.WorkOrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders [get]
func (h *WorkOrderHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	var req productionapp.ListWorkOrdersRequest
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

	orders, total, err := h.workOrderService.List(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, req.Page, req.PageSize)
}

// Update godoc
// @ID           updateWorkOrder
// @Summary      Update a work order
// @Description  Update a draft work order's details
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Work order ID" format(uuid)
// @Param        request body production.UpdateWorkOrderRequest true "Work order update request"
// @Success      200 {object} APIResponse[production.WorkOrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id} [put]
func (h *WorkOrderHandler) Update(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work order ID format")
		return
	}

	var req productionapp.UpdateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wo, err := h.workOrderService.Update(c.Request.Context(), companyID, workOrderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wo)
}

// Assign godoc
// @ID           assignWorkOrder
// @Summary      Assign a work order
// @Description  Assign a resource and/or work center to a work order
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Work order ID" format(uuid)
// @Param        request body production.AssignWorkOrderRequest true "Assignment request"
// @Success      200 {object} APIResponse[production.WorkOrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id}/assign [post]
func (h *WorkOrderHandler) Assign(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work order ID format")
		return
	}

	var req productionapp.AssignWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wo, err := h.workOrderService.Assign(c.Request.Context(), companyID, workOrderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wo)
}

// AddRoutingLine godoc
// @ID           addWorkOrderRoutingLine
// @Summary      Add a routing line
// @Description  Append a routing operation to a draft work order
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Work order ID" format(uuid)
// @Param        request body production.AddRoutingLineRequest true "Routing line request"
// @Success      200 {object} APIResponse[production.WorkOrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id}/routing-lines [post]
func (h *WorkOrderHandler) AddRoutingLine(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work order ID format")
		return
	}

	var req productionapp.AddRoutingLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wo, err := h.workOrderService.AddRoutingLine(c.Request.Context(), companyID, workOrderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wo)
}

// RemoveRoutingLine godoc
// @ID           removeWorkOrderRoutingLine
// @Summary      Remove a routing line
// @Description  Remove a pending routing operation from a draft work order
// @Tags         work-orders
// @Produce      json
// @Param        id path string true "Work order ID" format(uuid)
// @Param        lineId path string true "Routing line ID" format(uuid)
// @Success      200 {object} APIResponse[production.WorkOrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id}/routing-lines/{lineId} [delete]
func (h *WorkOrderHandler) RemoveRoutingLine(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work order ID format")
		return
	}

	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.BadRequest(c, "Invalid routing line ID format")
		return
	}

	wo, err := h.workOrderService.RemoveRoutingLine(c.Request.Context(), companyID, workOrderID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wo)
}

// TransitionRoutingLine godoc
// @ID           transitionWorkOrderRoutingLine
// @Summary      Transition a routing line
// @Description  Move a routing operation through pending, running and done, recording actual minutes
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Work order ID" format(uuid)
// @Param        lineId path string true "Routing line ID" format(uuid)
// @Param        request body production.TransitionRoutingLineRequest true "Routing line transition request"
// @Success      200 {object} APIResponse[production.WorkOrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id}/routing-lines/{lineId}/transition [post]
func (h *WorkOrderHandler) TransitionRoutingLine(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work order ID format")
		return
	}

	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.BadRequest(c, "Invalid routing line ID format")
		return
	}

	var req productionapp.TransitionRoutingLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wo, err := h.workOrderService.TransitionRoutingLine(c.Request.Context(), companyID, workOrderID, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wo)
}

// Release godoc
// @ID           releaseWorkOrder
// @Summary      Release a work order
// @Description  Release a draft work order to the shop floor
// @Tags         work-orders
// @Produce      json
// @Param        id path string true "Work order ID" format(uuid)
// @Success      200 {object} APIResponse[production.WorkOrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id}/release [post]
func (h *WorkOrderHandler) Release(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work order ID format")
		return
	}

	wo, err := h.workOrderService.Release(c.Request.Context(), companyID, workOrderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wo)
}

// Start godoc
// @ID           startWorkOrder
// @Summary      Start a work order
// @Description  Move a released work order to In Progress
// @Tags         work-orders
// @Produce      json
// @Param        id path string true "Work order ID" format(uuid)
// @Success      200 {object} APIResponse[production.WorkOrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id}/start [post]
func (h *WorkOrderHandler) Start(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work order ID format")
		return
	}

	wo, err := h.workOrderService.Start(c.Request.Context(), companyID, workOrderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wo)
}

// Complete godoc
// @ID           completeWorkOrder
// @Summary      Complete a work order
// @Description  Complete an in-progress work order once all routing lines are done
// @Tags         work-orders
// @Produce      json
// @Param        id path string true "Work order ID" format(uuid)
// @Success      200 {object} APIResponse[production.WorkOrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id}/complete [post]
func (h *WorkOrderHandler) Complete(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work order ID format")
		return
	}

	wo, err := h.workOrderService.Complete(c.Request.Context(), companyID, workOrderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wo)
}

// Cancel godoc
// @ID           cancelWorkOrder
// @Summary      Cancel a work order
// @Description  Cancel a work order with an optional reason
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Work order ID" format(uuid)
// @Param        request body production.CancelWorkOrderRequest false "Cancellation reason"
// @Success      200 {object} APIResponse[production.WorkOrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id}/cancel [post]
func (h *WorkOrderHandler) Cancel(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work order ID format")
		return
	}

	var req productionapp.CancelWorkOrderRequest
	_ = c.ShouldBindJSON(&req)

	wo, err := h.workOrderService.Cancel(c.Request.Context(), companyID, workOrderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, wo)
}
