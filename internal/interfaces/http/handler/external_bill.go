package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/villahub/backend/internal/application/billing"
	"github.com/villahub/backend/internal/domain/billing"
	"github.com/villahub/backend/internal/domain/shared/valueobject"
	"github.com/villahub/backend/internal/interfaces/http/dto"
)

// ExternalBillHandler handles one-off bill API endpoints. External bills
// target people outside the resident roster (a moved-out tenant with a
// final utility balance, a contractor) and are settled through a public
// payment link instead of the monthly invoice run.
type ExternalBillHandler struct {
	BaseHandler
	billService *billingapp.ExternalBillService
}

// NewExternalBillHandler creates a new ExternalBillHandler
func NewExternalBillHandler(billService *billingapp.ExternalBillService) *ExternalBillHandler {
	return &ExternalBillHandler{
		billService: billService,
	}
}

// CreateExternalBillRequest represents a request to issue a one-off bill
// @Description Request body for issuing an external bill. Amounts are in won; due_date is RFC 3339.
type CreateExternalBillRequest struct {
	TargetName  string     `json:"target_name" binding:"required,min=1,max=100" example:"Park Jisoo"`
	Phone       string     `json:"phone" binding:"max=50" example:"010-2345-6789"`
	Amount      int64      `json:"amount" binding:"required,gt=0" example:"85000"`
	Description string     `json:"description" binding:"max=500" example:"Final water bill after move-out"`
	DueDate     *time.Time `json:"due_date" example:"2026-04-10T00:00:00Z"`
}

// Create godoc
// @ID           createExternalBill
// @Summary      Issue an external bill
// @Description  Issue a one-off bill to someone outside the resident roster. The bill ID doubles as the public payment link token.
// @Tags         external-bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        request body CreateExternalBillRequest true "External bill request"
// @Success      201 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/external-bills [post]
func (h *ExternalBillHandler) Create(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	var req CreateExternalBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.billService.Create(c.Request.Context(), billingapp.CreateExternalBillRequest{
		TenantID:    tenantID,
		TargetName:  req.TargetName,
		Phone:       req.Phone,
		Amount:      valueobject.NewMoneyKRW(req.Amount),
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, bill)
}

// List godoc
// @ID           listExternalBills
// @Summary      List external bills
// @Description  Retrieve a paginated list of a community's external bills
// @Tags         external-bills
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        status query string false "Filter by status" Enums(PENDING, PENDING_CONFIRMATION, COMPLETED)
// @Param        overdue query bool false "Only bills past their due date and not completed"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/external-bills [get]
func (h *ExternalBillHandler) List(c *gin.Context) {
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

	filter := billing.ExternalBillFilter{Filter: filterFromListRequest(req)}
	if s := c.Query("status"); s != "" {
		status := billing.ExternalBillStatus(s)
		filter.Status = &status
	}
	switch c.Query("overdue") {
	case "true":
		overdue := true
		filter.Overdue = &overdue
	case "false":
		overdue := false
		filter.Overdue = &overdue
	}

	result, err := h.billService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID godoc
// @ID           getExternalBillById
// @Summary      Get external bill by ID
// @Description  Retrieve one of a community's external bills
// @Tags         external-bills
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        billId path string true "External bill ID" format(uuid)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/external-bills/{billId} [get]
func (h *ExternalBillHandler) GetByID(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	billID, err := parseUUIDParam(c, "billId")
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	bill, err := h.billService.Get(c.Request.Context(), tenantID, billID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// Confirm godoc
// @ID           confirmExternalBill
// @Summary      Confirm an external bill payment
// @Description  Confirm receipt of a self-reported payment, completing the bill
// @Tags         external-bills
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        billId path string true "External bill ID" format(uuid)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/external-bills/{billId}/confirm [post]
func (h *ExternalBillHandler) Confirm(c *gin.Context) {
	tenantID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	billID, err := parseUUIDParam(c, "billId")
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	bill, err := h.billService.Confirm(c.Request.Context(), tenantID, billID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// GetPublic godoc
// @ID           getExternalBillPublic
// @Summary      View an external bill through its payment link
// @Description  Load a bill by its link token. No account is required; the unguessable bill ID is the only credential the billee holds.
// @Tags         external-bills
// @Produce      json
// @Param        id path string true "External bill ID" format(uuid)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /public/external-bills/{id} [get]
func (h *ExternalBillHandler) GetPublic(c *gin.Context) {
	billID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	bill, err := h.billService.GetPublic(c.Request.Context(), billID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// ReportPaid godoc
// @ID           reportExternalBillPaid
// @Summary      Self-report an external bill as paid
// @Description  Mark a bill as paid from the public payment link. The bill moves to PENDING_CONFIRMATION until the manager confirms receipt.
// @Tags         external-bills
// @Produce      json
// @Param        id path string true "External bill ID" format(uuid)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /public/external-bills/{id}/report-paid [post]
func (h *ExternalBillHandler) ReportPaid(c *gin.Context) {
	billID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	bill, err := h.billService.SelfReportPaid(c.Request.Context(), billID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}
