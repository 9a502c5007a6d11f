package handler

import (
	"github.com/gin-gonic/gin"
	communityapp "github.com/villahub/backend/internal/application/community"
)

// ResidentHandler handles resident and unit API endpoints within a community
type ResidentHandler struct {
	BaseHandler
	residentService *communityapp.ResidentService
}

// NewResidentHandler creates a new ResidentHandler
func NewResidentHandler(residentService *communityapp.ResidentService) *ResidentHandler {
	return &ResidentHandler{
		residentService: residentService,
	}
}

// RegisterResidentRequest represents a move-in registration
// @Description Request body for registering a resident into a unit
type RegisterResidentRequest struct {
	RoomNumber string `json:"room_number" binding:"required,min=1,max=20" example:"302"`
	Name       string `json:"name" binding:"required,min=1,max=100" example:"Kim Minji"`
	Phone      string `json:"phone" binding:"max=50" example:"010-1234-5678"`
}

// UpdateResidentRequest represents a resident detail update
// @Description Request body for updating a resident's contact details
type UpdateResidentRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100" example:"Kim Minji"`
	Phone *string `json:"phone" binding:"omitempty,max=50" example:"010-8765-4321"`
}

// Register godoc
// @ID           registerResident
// @Summary      Register a resident
// @Description  Record a move-in. The unit is created on first occupancy and reused for later move-ins; units are never deleted.
// @Tags         residents
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        request body RegisterResidentRequest true "Move-in request"
// @Success      201 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/residents [post]
func (h *ResidentHandler) Register(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	var req RegisterResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resident, err := h.residentService.RegisterResident(c.Request.Context(), communityapp.RegisterResidentRequest{
		TenantID:   tenantID,
		RoomNumber: req.RoomNumber,
		Name:       req.Name,
		Phone:      req.Phone,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resident)
}

// List godoc
// @ID           listResidents
// @Summary      List residents
// @Description  List active residents of a community together with their room numbers
// @Tags         residents
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/residents [get]
func (h *ResidentHandler) List(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	residents, err := h.residentService.ListResidents(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, residents)
}

// ListUnits godoc
// @ID           listUnits
// @Summary      List units
// @Description  List all units of a community, occupied and vacant
// @Tags         residents
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/units [get]
func (h *ResidentHandler) ListUnits(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	units, err := h.residentService.ListUnits(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, units)
}

// GetByID godoc
// @ID           getResidentById
// @Summary      Get resident by ID
// @Description  Retrieve a resident of a community by ID
// @Tags         residents
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        residentId path string true "Resident ID" format(uuid)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/residents/{residentId} [get]
func (h *ResidentHandler) GetByID(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	residentID, err := parseUUIDParam(c, "residentId")
	if err != nil {
		h.BadRequest(c, "Invalid resident ID format")
		return
	}

	resident, err := h.residentService.GetResident(c.Request.Context(), tenantID, residentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resident)
}

// Update godoc
// @ID           updateResident
// @Summary      Update a resident
// @Description  Update a resident's name and phone number
// @Tags         residents
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        residentId path string true "Resident ID" format(uuid)
// @Param        request body UpdateResidentRequest true "Resident update request"
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/residents/{residentId} [put]
func (h *ResidentHandler) Update(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	residentID, err := parseUUIDParam(c, "residentId")
	if err != nil {
		h.BadRequest(c, "Invalid resident ID format")
		return
	}

	var req UpdateResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resident, err := h.residentService.UpdateResident(c.Request.Context(), tenantID, residentID, communityapp.UpdateResidentRequest{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resident)
}

// MoveOut godoc
// @ID           moveOutResident
// @Summary      Move out a resident
// @Description  Deactivate a resident and free their unit. Invoices and payments issued while they lived there are kept.
// @Tags         residents
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        residentId path string true "Resident ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/residents/{residentId} [delete]
func (h *ResidentHandler) MoveOut(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	residentID, err := parseUUIDParam(c, "residentId")
	if err != nil {
		h.BadRequest(c, "Invalid resident ID format")
		return
	}

	if err := h.residentService.MoveOut(c.Request.Context(), tenantID, residentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
