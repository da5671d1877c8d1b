package handler

import (
	"fmt"
	"net/http"

	takeoffapp "github.com/fabmate/backend/internal/application/takeoff"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MeasurementHandler handles annotation, measurement and BOM API endpoints
type MeasurementHandler struct {
	BaseHandler
	measurementService *takeoffapp.MeasurementService
	bomExporter        *takeoffapp.BOMExporter
}

// NewMeasurementHandler creates a new MeasurementHandler
func NewMeasurementHandler(measurementService *takeoffapp.MeasurementService, bomExporter *takeoffapp.BOMExporter) *MeasurementHandler {
	return &MeasurementHandler{
		measurementService: measurementService,
		bomExporter:        bomExporter,
	}
}

// CreateAnnotation godoc
// @ID           createAnnotation
// @Summary      Record an annotation
// @Description  Record an annotation drawn on a drawing. When a measurement kind is given a measurement is created alongside, optionally priced against a catalogue item. Pass X-Client-ID so the change broadcast names the originating tab.
// @Tags         measurements
// @Accept       json
// @Produce      json
// @Param        id path string true "Drawing ID" format(uuid)
// @Param        X-Client-ID header string false "Originating takeoff client ID"
// @Param        request body takeoff.CreateAnnotationRequest true "Annotation creation request"
// @Success      201 {object} APIResponse[takeoff.AnnotationWithMeasurementResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /drawings/{id}/annotations [post]
func (h *MeasurementHandler) CreateAnnotation(c *gin.Context) {
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

	var req takeoffapp.CreateAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.measurementService.CreateAnnotation(clientScopedContext(c), companyID, drawingID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// UpdateAnnotation godoc
// @ID           updateAnnotation
// @Summary      Update an annotation
// @Description  Update an annotation's geometry and re-measure it
// @Tags         measurements
// @Accept       json
// @Produce      json
// @Param        id path string true "Drawing ID" format(uuid)
// @Param        annotationId path string true "Client annotation ID"
// @Param        X-Client-ID header string false "Originating takeoff client ID"
// @Param        request body takeoff.UpdateAnnotationRequest true "Annotation update request"
// @Success      200 {object} APIResponse[takeoff.AnnotationWithMeasurementResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /drawings/{id}/annotations/{annotationId} [put]
func (h *MeasurementHandler) UpdateAnnotation(c *gin.Context) {
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

	annotationID := c.Param("annotationId")
	if annotationID == "" {
		h.BadRequest(c, "Annotation ID is required")
		return
	}

	var req takeoffapp.UpdateAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.measurementService.UpdateAnnotation(clientScopedContext(c), companyID, drawingID, annotationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DeleteAnnotation godoc
// @ID           deleteAnnotation
// @Summary      Delete an annotation
// @Description  Delete an annotation and cascade to its linked measurement when one exists
// @Tags         measurements
// @Produce      json
// @Param        id path string true "Drawing ID" format(uuid)
// @Param        annotationId path string true "Client annotation ID"
// @Param        X-Client-ID header string false "Originating takeoff client ID"
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /drawings/{id}/annotations/{annotationId} [delete]
func (h *MeasurementHandler) DeleteAnnotation(c *gin.Context) {
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

	annotationID := c.Param("annotationId")
	if annotationID == "" {
		h.BadRequest(c, "Annotation ID is required")
		return
	}

	if err := h.measurementService.DeleteAnnotation(clientScopedContext(c), companyID, drawingID, annotationID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListAnnotations godoc
// @ID           listAnnotations
// @Summary      List a drawing's annotations
// @Description  Retrieve every annotation on a drawing with its measurement when one exists
// @Tags         measurements
// @Produce      json
// @Param        id path string true "Drawing ID" format(uuid)
// @Success      200 {object} APIResponse[[]takeoff.AnnotationWithMeasurementResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /drawings/{id}/annotations [get]
func (h *MeasurementHandler) ListAnnotations(c *gin.Context) {
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

	annotations, err := h.measurementService.ListAnnotations(c.Request.Context(), companyID, drawingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, annotations)
}

// ListMeasurements godoc
// @ID           listMeasurements
// @Summary      List a drawing's measurements
// @Tags         measurements
// @Produce      json
// @Param        id path string true "Drawing ID" format(uuid)
// @Success      200 {object} APIResponse[[]takeoff.MeasurementResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /drawings/{id}/measurements [get]
func (h *MeasurementHandler) ListMeasurements(c *gin.Context) {
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

	measurements, err := h.measurementService.ListMeasurements(c.Request.Context(), companyID, drawingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, measurements)
}

// LinkCatalogueItem godoc
// @ID           linkMeasurementCatalogueItem
// @Summary      Price a measurement against a catalogue item
// @Description  Link an existing measurement to a catalogue item and recalculate quantity and weight
// @Tags         measurements
// @Accept       json
// @Produce      json
// @Param        id path string true "Measurement ID" format(uuid)
// @Param        X-Client-ID header string false "Originating takeoff client ID"
// @Param        request body takeoff.LinkMeasurementRequest true "Catalogue item link request"
// @Success      200 {object} APIResponse[takeoff.MeasurementResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /measurements/{id}/link [post]
func (h *MeasurementHandler) LinkCatalogueItem(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	measurementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid measurement ID format")
		return
	}

	var req takeoffapp.LinkMeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	measurement, err := h.measurementService.LinkCatalogueItem(clientScopedContext(c), companyID, measurementID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, measurement)
}

// GenerateBOM godoc
// @ID           generateDrawingBom
// @Summary      Generate a bill of materials
// @Description  Aggregate a drawing's priced measurements into a bill of materials
// @Tags         measurements
// @Produce      json
// @Param        id path string true "Drawing ID" format(uuid)
// @Success      200 {object} APIResponse[takeoff.BOMResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /drawings/{id}/bom [get]
func (h *MeasurementHandler) GenerateBOM(c *gin.Context) {
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

	bom, err := h.measurementService.GenerateBOM(c.Request.Context(), companyID, drawingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, bom)
}

// ExportBOM godoc
// @ID           exportDrawingBom
// @Summary      Export a bill of materials
// @Description  Export the drawing's bill of materials as a downloadable CSV, XLSX or PDF file
// @Tags         measurements
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      application/pdf
// @Param        id path string true "Drawing ID" format(uuid)
// @Param        format query string false "Export format" Enums(csv, xlsx, pdf) default(csv)
// @Success      200 {file} byte
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /drawings/{id}/bom/export [get]
func (h *MeasurementHandler) ExportBOM(c *gin.Context) {
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

	format, err := takeoffapp.ParseBOMExportFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	bom, err := h.measurementService.GenerateBOM(c.Request.Context(), companyID, drawingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	data, err := h.bomExporter.Export(c.Request.Context(), bom, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("bom-%s.%s", drawingID, format.Extension())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), data)
}
