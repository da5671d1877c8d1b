package handler

import (
	catalogueapp "github.com/fabmate/backend/internal/application/catalogue"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CatalogueHandler handles catalogue and catalogue item API endpoints
type CatalogueHandler struct {
	BaseHandler
	catalogueService *catalogueapp.CatalogueService
}

// NewCatalogueHandler creates a new CatalogueHandler
func NewCatalogueHandler(catalogueService *catalogueapp.CatalogueService) *CatalogueHandler {
	return &CatalogueHandler{
		catalogueService: catalogueService,
	}
}

// Create godoc
// @ID           createCatalogue
// @Summary      Create a custom catalogue
// @Description  Create a company-owned catalogue. System catalogues are seeded and cannot be created through the API.
// @Tags         catalogues
// @Accept       json
// @Produce      json
// @Param        request body catalogue.CreateCatalogueRequest true "Catalogue creation request"
// @Success      201 {object} APIResponse[catalogue.CatalogueResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /catalogues [post]
func (h *CatalogueHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	var req catalogueapp.CreateCatalogueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var createdBy *uuid.UUID
	if userID, err := getUserID(c); err == nil {
		createdBy = &userID
	}

	cat, err := h.catalogueService.Create(c.Request.Context(), companyID, req, createdBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, cat)
}

// GetByID godoc
// @ID           getCatalogueById
// @Summary      Get catalogue by ID
// @Description  Retrieve a system or company catalogue by its ID
// @Tags         catalogues
// @Produce      json
// @Param        id path string true "Catalogue ID" format(uuid)
// @Success      200 {object} APIResponse[catalogue.CatalogueResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /catalogues/{id} [get]
func (h *CatalogueHandler) GetByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	catalogueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid catalogue ID format")
		return
	}

	cat, err := h.catalogueService.GetByID(c.Request.Context(), companyID, catalogueID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cat)
}

// List godoc
// @ID           listCatalogues
// @Summary      List catalogues
// @Description  Retrieve system catalogues plus the company's own catalogues
// @Tags         catalogues
// @Produce      json
// @Param        search query string false "Search term (name)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]catalogue.CatalogueResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /catalogues [get]
func (h *CatalogueHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	page, pageSize := getPagination(c)
	search := c.Query("search")

	catalogues, total, err := h.catalogueService.List(c.Request.Context(), companyID, page, pageSize, search)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, catalogues, total, page, pageSize)
}

// Update godoc
// @ID           updateCatalogue
// @Summary      Update a catalogue
// @Description  Rename a company catalogue. System catalogues are read-only.
// @Tags         catalogues
// @Accept       json
// @Produce      json
// @Param        id path string true "Catalogue ID" format(uuid)
// @Param        request body catalogue.UpdateCatalogueRequest true "Catalogue update request"
// @Success      200 {object} APIResponse[catalogue.CatalogueResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /catalogues/{id} [put]
func (h *CatalogueHandler) Update(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	catalogueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid catalogue ID format")
		return
	}

	var req catalogueapp.UpdateCatalogueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cat, err := h.catalogueService.Update(c.Request.Context(), companyID, catalogueID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cat)
}

// Delete godoc
// @ID           deleteCatalogue
// @Summary      Delete a catalogue
// @Description  Delete a company catalogue and its items. System catalogues are read-only.
// @Tags         catalogues
// @Produce      json
// @Param        id path string true "Catalogue ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /catalogues/{id} [delete]
func (h *CatalogueHandler) Delete(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	catalogueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid catalogue ID format")
		return
	}

	if err := h.catalogueService.Delete(c.Request.Context(), companyID, catalogueID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// CreateItem godoc
// @ID           createCatalogueItem
// @Summary      Add an item to a catalogue
// @Description  Add an item to a company catalogue. System catalogues are read-only.
// @Tags         catalogues
// @Accept       json
// @Produce      json
// @Param        id path string true "Catalogue ID" format(uuid)
// @Param        request body catalogue.CreateCatalogueItemRequest true "Catalogue item creation request"
// @Success      201 {object} APIResponse[catalogue.CatalogueItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /catalogues/{id}/items [post]
func (h *CatalogueHandler) CreateItem(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	catalogueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid catalogue ID format")
		return
	}

	var req catalogueapp.CreateCatalogueItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.catalogueService.CreateItem(c.Request.Context(), companyID, catalogueID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, item)
}

// GetItem godoc
// @ID           getCatalogueItemById
// @Summary      Get catalogue item by ID
// @Tags         catalogues
// @Produce      json
// @Param        itemId path string true "Catalogue item ID" format(uuid)
// @Success      200 {object} APIResponse[catalogue.CatalogueItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /catalogue-items/{itemId} [get]
func (h *CatalogueHandler) GetItem(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid catalogue item ID format")
		return
	}

	item, err := h.catalogueService.GetItem(c.Request.Context(), companyID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// ListItems godoc
// @ID           listCatalogueItems
// @Summary      List catalogue items
// @Description  Retrieve a paginated list of a catalogue's items with optional search
// @Tags         catalogues
// @Produce      json
// @Param        id path string true "Catalogue ID" format(uuid)
// @Param        search query string false "Search term (item code, description)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]catalogue.CatalogueItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /catalogues/{id}/items [get]
func (h *CatalogueHandler) ListItems(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	catalogueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid catalogue ID format")
		return
	}

	page, pageSize := getPagination(c)
	search := c.Query("search")

	items, total, err := h.catalogueService.ListItems(c.Request.Context(), companyID, catalogueID, page, pageSize, search)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// UpdateItem godoc
// @ID           updateCatalogueItem
// @Summary      Update a catalogue item
// @Description  Update an item in a company catalogue. Items of system catalogues are read-only.
// @Tags         catalogues
// @Accept       json
// @Produce      json
// @Param        itemId path string true "Catalogue item ID" format(uuid)
// @Param        request body catalogue.UpdateCatalogueItemRequest true "Catalogue item update request"
// @Success      200 {object} APIResponse[catalogue.CatalogueItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /catalogue-items/{itemId} [put]
func (h *CatalogueHandler) UpdateItem(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid catalogue item ID format")
		return
	}

	var req catalogueapp.UpdateCatalogueItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.catalogueService.UpdateItem(c.Request.Context(), companyID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// DeleteItem godoc
// @ID           deleteCatalogueItem
// @Summary      Delete a catalogue item
// @Description  Delete an item from a company catalogue. Items of system catalogues are read-only.
// @Tags         catalogues
// @Produce      json
// @Param        itemId path string true "Catalogue item ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /catalogue-items/{itemId} [delete]
func (h *CatalogueHandler) DeleteItem(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company scope")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid catalogue item ID format")
		return
	}

	if err := h.catalogueService.DeleteItem(c.Request.Context(), companyID, itemID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
