package handler

import (
	"context"

	takeoffapp "github.com/fabmate/backend/internal/application/takeoff"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DrawingHandler handles package drawing API endpoints
type DrawingHandler struct {
	BaseHandler
	drawingService *takeoffapp.DrawingService
}

// NewDrawingHandler creates a new DrawingHandler
func NewDrawingHandler(drawingService *takeoffapp.DrawingService) *DrawingHandler {
	return &DrawingHandler{
		drawingService: drawingService,
	}
}

// clientScopedContext stamps the caller's takeoff client id onto the request
// context so drawing-change events can name their originating tab.
func clientScopedContext(c *gin.Context) context.Context {
	return takeoffapp.WithClientID(c.Request.Context(), c.GetHeader("X-Client-ID"))
}

// InitiateUpload godoc
// @ID           initiateDrawingUpload
// @Summary      Initiate a drawing upload
// @Description  Register a PDF drawing against a work package and return a presigned URL the client uploads the file to
// @Tags         drawings
// @Accept       json
// @Produce      json
// @Param        request body takeoff.InitiateDrawingUploadRequest true "Upload initiation request"
// @Success      201 {object} APIResponse[takeoff.InitiateDrawingUploadResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /drawings [post]
func (h *DrawingHandler) InitiateUpload(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	var req takeoffapp.InitiateDrawingUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var uploadedBy *uuid.UUID
	if userID, err := getUserID(c); err == nil {
		uploadedBy = &userID
	}

	result, err := h.drawingService.InitiateUpload(c.Request.Context(), companyID, req, uploadedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @ID           getDrawingById
// @Summary      Get drawing by ID
// @Description  Retrieve a drawing's metadata with a presigned download URL
// @Tags         drawings
// @Produce      json
// @Param        id path string true "Drawing ID" format(uuid)
// @Success      200 {object} APIResponse[takeoff.DrawingResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /drawings/{id} [get]
func (h *DrawingHandler) GetByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	drawingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid drawing ID format")
		return
	}

	drawing, err := h.drawingService.GetByID(c.Request.Context(), companyID, drawingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, drawing)
}

// Open godoc
// @ID           openDrawing
// @Summary      Open a drawing for takeoff
// @Description  Retrieve a drawing with its annotation blob and current sync version, ready for the measurement viewer
// @Tags         drawings
// @Produce      json
// @Param        id path string true "Drawing ID" format(uuid)
// @Success      200 {object} APIResponse[takeoff.DrawingDetailResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /drawings/{id}/open [get]
func (h *DrawingHandler) Open(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	drawingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid drawing ID format")
		return
	}

	detail, err := h.drawingService.Open(c.Request.Context(), companyID, drawingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, detail)
}

// ListByWorkPackage godoc
// @ID           listDrawingsByWorkPackage
// @Summary      List drawings for a work package
// @Tags         drawings
// @Produce      json
// @Param        work_package_id query string true "Work package ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]takeoff.DrawingResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /drawings [get]
func (h *DrawingHandler) ListByWorkPackage(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	workPackageID, err := uuid.Parse(c.Query("work_package_id"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing work_package_id")
		return
	}

	page, pageSize := getPagination(c)

	drawings, total, err := h.drawingService.ListByWorkPackage(c.Request.Context(), companyID, workPackageID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, drawings, total, page, pageSize)
}

// SaveInstantJSON godoc
// @ID           saveDrawingInstantJson
// @Summary      Save the annotation blob
// @Description  Autosave the drawing's Instant JSON blob. The save succeeds only when base_version matches the server's sync version; a stale save returns 409 with the current version so the client can resync. Pass X-Client-ID so the change broadcast names the originating tab.
// @Tags         drawings
// @Accept       json
// @Produce      json
// @Param        id path string true "Drawing ID" format(uuid)
// @Param        X-Client-ID header string false "Originating takeoff client ID"
// @Param        request body takeoff.SaveInstantJSONRequest true "Instant JSON save request"
// @Success      200 {object} APIResponse[takeoff.SaveInstantJSONResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /drawings/{id}/instant-json [patch]
func (h *DrawingHandler) SaveInstantJSON(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	drawingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid drawing ID format")
		return
	}

	var req takeoffapp.SaveInstantJSONRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.drawingService.SaveInstantJSON(clientScopedContext(c), companyID, drawingID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
// @ID           deleteDrawing
// @Summary      Delete a drawing
// @Description  Delete a drawing, its stored PDF, and its annotations and measurements
// @Tags         drawings
// @Produce      json
// @Param        id path string true "Drawing ID" format(uuid)
// @Param        X-Client-ID header string false "Originating takeoff client ID"
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /drawings/{id} [delete]
func (h *DrawingHandler) Delete(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	drawingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid drawing ID format")
		return
	}

	if err := h.drawingService.Delete(clientScopedContext(c), companyID, drawingID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
