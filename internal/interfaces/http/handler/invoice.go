package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/villahub/backend/internal/application/billing"
	"github.com/villahub/backend/internal/domain/billing"
	"github.com/villahub/backend/internal/domain/shared/valueobject"
	"github.com/villahub/backend/internal/interfaces/http/dto"
)

// InvoiceHandler handles monthly invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// InvoiceItemRequest is one breakdown line of a variable invoice
// @Description One labeled charge line carried by a variable invoice. Amounts are in won.
type InvoiceItemRequest struct {
	Label  string `json:"label" binding:"required,min=1,max=100" example:"Elevator maintenance"`
	Amount int64  `json:"amount" binding:"required,gt=0" example:"120000"`
}

// InvoiceOverrideRequest pins one unit's share of a variable invoice
// @Description Per-unit override. Exactly one of amount (won) or ratio (decimal string, 0-1) must be set.
type InvoiceOverrideRequest struct {
	UnitID string  `json:"unit_id" binding:"required,uuid" example:"9e8b8a51-7b1c-4a8d-9f1e-2c3d4e5f6a7b"`
	Amount *int64  `json:"amount" binding:"omitempty,gt=0" example:"50000"`
	Ratio  *string `json:"ratio" example:"0.25"`
}

// CreateInvoiceRequest represents a request to issue a monthly invoice
// @Description Request body for issuing an invoice. A FIXED invoice takes exactly one of per_unit_amount or total_amount; a VARIABLE invoice takes items and optional overrides. Amounts are in won.
type CreateInvoiceRequest struct {
	BillingMonth  string                   `json:"billing_month" binding:"required" example:"2026-03"`
	Type          string                   `json:"type" binding:"required,oneof=FIXED VARIABLE" example:"FIXED"`
	Memo          string                   `json:"memo" binding:"max=500" example:"March maintenance fee"`
	PerUnitAmount *int64                   `json:"per_unit_amount" binding:"omitempty,gt=0" example:"150000"`
	TotalAmount   *int64                   `json:"total_amount" binding:"omitempty,gt=0" example:"1200000"`
	Items         []InvoiceItemRequest     `json:"items" binding:"omitempty,dive"`
	Overrides     []InvoiceOverrideRequest `json:"overrides" binding:"omitempty,dive"`
}

// UpdateInvoiceRequest represents a request to edit an invoice
// @Description Request body for editing an invoice. Rejected once any payment on the invoice is completed.
type UpdateInvoiceRequest struct {
	BillingMonth *string              `json:"billing_month" example:"2026-04"`
	Memo         *string              `json:"memo" binding:"omitempty,max=500" example:"April maintenance fee"`
	Type         *string              `json:"type" binding:"omitempty,oneof=FIXED VARIABLE" example:"VARIABLE"`
	TotalAmount  *int64               `json:"total_amount" binding:"omitempty,gt=0" example:"1300000"`
	Items        []InvoiceItemRequest `json:"items" binding:"omitempty,dive"`
}

// Create godoc
// @ID           createInvoice
// @Summary      Issue an invoice
// @Description  Issue a monthly invoice for a community. The total is allocated over the occupied units and one pending payment per resident is opened in the same transaction.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        request body CreateInvoiceRequest true "Invoice creation request"
// @Success      201 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := billingapp.CreateInvoiceRequest{
		TenantID:     tenantID,
		BillingMonth: req.BillingMonth,
		Type:         billing.InvoiceType(req.Type),
		Memo:         req.Memo,
	}
	if req.PerUnitAmount != nil {
		amount := valueobject.NewMoneyKRW(*req.PerUnitAmount)
		appReq.PerUnitAmount = &amount
	}
	if req.TotalAmount != nil {
		amount := valueobject.NewMoneyKRW(*req.TotalAmount)
		appReq.TotalAmount = &amount
	}
	appReq.Items = toItemInputs(req.Items)
	for _, o := range req.Overrides {
		unitID, err := uuid.Parse(o.UnitID)
		if err != nil {
			h.BadRequest(c, "Invalid unit ID format in overrides")
			return
		}
		override := billingapp.OverrideInput{UnitID: unitID, Ratio: o.Ratio}
		if o.Amount != nil {
			amount := valueobject.NewMoneyKRW(*o.Amount)
			override.Amount = &amount
		}
		appReq.Overrides = append(appReq.Overrides, override)
	}

	result, err := h.invoiceService.CreateInvoice(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @ID           getInvoiceById
// @Summary      Get invoice by ID
// @Description  Retrieve an invoice together with its per-resident payments
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        invoiceId path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/invoices/{invoiceId} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	invoiceID, err := parseUUIDParam(c, "invoiceId")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	result, err := h.invoiceService.GetInvoice(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Description  Retrieve a paginated list of a community's invoices
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        billing_month query string false "Filter by billing month (YYYY-MM)"
// @Param        type query string false "Filter by invoice type" Enums(FIXED, VARIABLE)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := billing.InvoiceFilter{Filter: filterFromListRequest(req)}
	if month := c.Query("billing_month"); month != "" {
		filter.BillingMonth = &month
	}
	if t := c.Query("type"); t != "" {
		invoiceType := billing.InvoiceType(t)
		filter.Type = &invoiceType
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Edit an invoice
// @Description  Edit an invoice's month, memo, type, total or items. The edit is rejected with a conflict once any payment on the invoice is completed.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        invoiceId path string true "Invoice ID" format(uuid)
// @Param        request body UpdateInvoiceRequest true "Invoice update request"
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/invoices/{invoiceId} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	invoiceID, err := parseUUIDParam(c, "invoiceId")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := billingapp.UpdateInvoiceRequest{
		BillingMonth: req.BillingMonth,
		Memo:         req.Memo,
		Items:        toItemInputs(req.Items),
	}
	if req.Type != nil {
		invoiceType := billing.InvoiceType(*req.Type)
		appReq.Type = &invoiceType
	}
	if req.TotalAmount != nil {
		amount := valueobject.NewMoneyKRW(*req.TotalAmount)
		appReq.TotalAmount = &amount
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), tenantID, invoiceID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

func toItemInputs(items []InvoiceItemRequest) []billingapp.ItemInput {
	if len(items) == 0 {
		return nil
	}
	inputs := make([]billingapp.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, billingapp.ItemInput{
			Label:  item.Label,
			Amount: valueobject.NewMoneyKRW(item.Amount),
		})
	}
	return inputs
}
