package handler

import (
	traceapp "github.com/fabmate/backend/internal/application/trace"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceRecordHandler handles genealogy trace record API endpoints
type TraceRecordHandler struct {
	BaseHandler
	traceService *traceapp.TraceService
}

// NewTraceRecordHandler creates a new TraceRecordHandler
func NewTraceRecordHandler(traceService *traceapp.TraceService) *TraceRecordHandler {
	return &TraceRecordHandler{
		traceService: traceService,
	}
}

// Create godoc
// @ID           createTraceRecord
// @Summary      Record a genealogy event
// @Description  Record a trace event against an order, work package, work order or drawing, optionally chained to a parent record
// @Tags         trace
// @Accept       json
// @Produce      json
// @Param        request body trace.CreateTraceRecordRequest true "Trace record creation request"
// @Success      201 {object} APIResponse[trace.TraceRecordResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /trace-records [post]
func (h *TraceRecordHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	var req traceapp.CreateTraceRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var recordedBy *uuid.UUID
	if userID, err := getUserID(c); err == nil {
		recordedBy = &userID
	}

	record, err := h.traceService.Create(c.Request.Context(), companyID, req, recordedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, record)
}

// GetByID godoc
// @ID           getTraceRecordById
// @Summary      Get trace record by ID
// @Tags         trace
// @Produce      json
// @Param        id path string true "Trace record ID" format(uuid)
// @Success      200 {object} APIResponse[trace.TraceRecordResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /trace-records/{id} [get]
func (h *TraceRecordHandler) GetByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trace record ID format")
		return
	}

	record, err := h.traceService.GetByID(c.Request.Context(), companyID, recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// List godoc
// @ID           listTraceRecords
// @Summary      List trace records
// @Description  Retrieve a paginated list of trace records with optional filtering
// @Tags         trace
// @Produce      json
// @Param        record_type query string false "Record type" Enums(material_receipt, cut, fabrication, assembly, treatment, inspection, despatch)
// @Param        reference_type query string false "Reference entity type"
// @Param        reference_id query string false "Reference entity ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]trace.TraceRecordResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /trace-records [get]
func (h *TraceRecordHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	var req traceapp.ListTraceRecordsRequest
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

	records, total, err := h.traceService.List(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, records, total, req.Page, req.PageSize)
}

// FindByReference godoc
// @ID           findTraceRecordsByReference
// @Summary      Find trace records by reference
// @Description  Retrieve every trace record attached to a given entity
// @Tags         trace
// @Produce      json
// @Param        referenceType path string true "Reference entity type"
// @Param        referenceId path string true "Reference entity ID" format(uuid)
// @Success      200 {object} APIResponse[[]trace.TraceRecordResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /trace-records/reference/{referenceType}/{referenceId} [get]
func (h *TraceRecordHandler) FindByReference(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	referenceType := c.Param("referenceType")
	if referenceType == "" {
		h.BadRequest(c, "Reference type is required")
		return
	}

	referenceID, err := uuid.Parse(c.Param("referenceId"))
	if err != nil {
		h.BadRequest(c, "Invalid reference ID format")
		return
	}

	records, err := h.traceService.FindByReference(c.Request.Context(), companyID, referenceType, referenceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, records)
}

// GetLineage godoc
// @ID           getTraceRecordLineage
// @Summary      Get a record's genealogy
// @Description  Walk the parent chain up and the child tree down from a trace record
// @Tags         trace
// @Produce      json
// @Param        id path string true "Trace record ID" format(uuid)
// @Success      200 {object} APIResponse[trace.LineageResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /trace-records/{id}/lineage [get]
func (h *TraceRecordHandler) GetLineage(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trace record ID format")
		return
	}

	lineage, err := h.traceService.GetLineage(c.Request.Context(), companyID, recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lineage)
}

// Delete godoc
// @ID           deleteTraceRecord
// @Summary      Delete a trace record
// @Description  Delete a trace record that has no child records
// @Tags         trace
// @Produce      json
// @Param        id path string true "Trace record ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /trace-records/{id} [delete]
func (h *TraceRecordHandler) Delete(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trace record ID format")
		return
	}

	if err := h.traceService.Delete(c.Request.Context(), companyID, recordID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
