package handler

import (
	"github.com/gin-gonic/gin"
	communityapp "github.com/villahub/backend/internal/application/community"
	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/domain/shared/valueobject"
	"github.com/villahub/backend/internal/interfaces/http/dto"
)

// TenantHandler handles community (villa/apartment building) API endpoints
type TenantHandler struct {
	BaseHandler
	tenantService *communityapp.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService *communityapp.TenantService) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
	}
}

// CreateTenantRequest represents a request to register a new community
// @Description Request body for registering a villa or apartment building
type CreateTenantRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100" example:"Sunny Villa"`
	Address string `json:"address" binding:"max=500" example:"12 Teheran-ro, Gangnam-gu, Seoul"`
}

// UpdateTenantRequest represents a request to update a community
// @Description Request body for updating a community's details
type UpdateTenantRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=100" example:"Sunny Villa A"`
	Address *string `json:"address" binding:"omitempty,max=500" example:"14 Teheran-ro, Gangnam-gu, Seoul"`
}

// ConfigureAutoBillingRequest represents a request to enable monthly auto-billing
// @Description Request body for configuring auto-billing. Amounts are in won.
type ConfigureAutoBillingRequest struct {
	BillingDay    int   `json:"billing_day" binding:"required,min=1,max=28" example:"25"`
	DefaultAmount int64 `json:"default_amount" binding:"required,gt=0" example:"300000"`
}

// Create godoc
// @ID           createTenant
// @Summary      Register a new community
// @Description  Register a villa or apartment building to manage
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        request body CreateTenantRequest true "Community registration request"
// @Success      201 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants [post]
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.tenantService.CreateTenant(c.Request.Context(), communityapp.CreateTenantRequest{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, tenant)
}

// GetByID godoc
// @ID           getTenantById
// @Summary      Get community by ID
// @Description  Retrieve a community by its ID
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id} [get]
func (h *TenantHandler) GetByID(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	tenant, err := h.tenantService.GetTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tenant)
}

// List godoc
// @ID           listTenants
// @Summary      List communities
// @Description  Retrieve a paginated list of managed communities
// @Tags         tenants
// @Produce      json
// @Param        search query string false "Search term (name, address)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants [get]
func (h *TenantHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.tenantService.ListTenants(c.Request.Context(), filterFromListRequest(req))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateTenant
// @Summary      Update a community
// @Description  Update an existing community's name and address
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        request body UpdateTenantRequest true "Community update request"
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id} [put]
func (h *TenantHandler) Update(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.tenantService.UpdateTenant(c.Request.Context(), tenantID, communityapp.UpdateTenantRequest{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tenant)
}

// ConfigureAutoBilling godoc
// @ID           configureTenantAutoBilling
// @Summary      Configure auto-billing
// @Description  Enable monthly auto-billing for a community. Each month on the configured day a fixed invoice over the default amount is issued automatically.
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        request body ConfigureAutoBillingRequest true "Auto-billing configuration"
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/auto-billing [put]
func (h *TenantHandler) ConfigureAutoBilling(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	var req ConfigureAutoBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.tenantService.ConfigureAutoBilling(c.Request.Context(), tenantID, communityapp.ConfigureAutoBillingRequest{
		BillingDay:    req.BillingDay,
		DefaultAmount: valueobject.NewMoneyKRW(req.DefaultAmount),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tenant)
}

// DisableAutoBilling godoc
// @ID           disableTenantAutoBilling
// @Summary      Disable auto-billing
// @Description  Turn off monthly auto-billing for a community
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/auto-billing [delete]
func (h *TenantHandler) DisableAutoBilling(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	tenant, err := h.tenantService.DisableAutoBilling(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tenant)
}

// filterFromListRequest converts bound list query params into a repository filter.
func filterFromListRequest(req dto.ListRequest) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	return filter
}
