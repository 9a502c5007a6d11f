package handler

import (
	"github.com/gin-gonic/gin"
	billingapp "github.com/villahub/backend/internal/application/billing"
	"github.com/villahub/backend/internal/domain/billing"
)

// PaymentHandler handles payment ledger API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// UpdatePaymentStatusRequest represents a payment status change
// @Description Request body for moving a payment forward in its lifecycle
type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING PENDING_CONFIRMATION COMPLETED" example:"COMPLETED"`
}

// UnpaidTotalData carries a resident's outstanding balance in won
type UnpaidTotalData struct {
	ResidentID  string `json:"resident_id"`
	UnpaidTotal int64  `json:"unpaid_total"`
}

// UpdateStatus godoc
// @ID           updatePaymentStatus
// @Summary      Update payment status
// @Description  Move a payment forward. Status only advances (PENDING to PENDING_CONFIRMATION to COMPLETED); a completed payment never reverts.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body UpdatePaymentStatusRequest true "Status change request"
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/status [put]
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	paymentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.UpdateStatus(c.Request.Context(), paymentID, billing.PaymentStatus(req.Status))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// ListForInvoice godoc
// @ID           listInvoicePayments
// @Summary      List payments of an invoice
// @Description  List an invoice's payments with each payer's name and room number
// @Tags         payments
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        invoiceId path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/invoices/{invoiceId}/payments [get]
func (h *PaymentHandler) ListForInvoice(c *gin.Context) {
	invoiceID, err := parseUUIDParam(c, "invoiceId")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	payments, err := h.paymentService.ListForInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payments)
}

// ListForResident godoc
// @ID           listResidentPayments
// @Summary      List a resident's payments
// @Description  List every payment of a resident across all communities, newest first, with the invoice month and type each one belongs to
// @Tags         payments
// @Produce      json
// @Param        id path string true "Resident ID" format(uuid)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /residents/{id}/payments [get]
func (h *PaymentHandler) ListForResident(c *gin.Context) {
	residentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid resident ID format")
		return
	}

	payments, err := h.paymentService.ListForResident(c.Request.Context(), residentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payments)
}

// UnpaidTotal godoc
// @ID           getResidentUnpaidTotal
// @Summary      Get a resident's unpaid total
// @Description  Sum of the resident's pending payment amounts in won
// @Tags         payments
// @Produce      json
// @Param        id path string true "Resident ID" format(uuid)
// @Success      200 {object} APIResponse[UnpaidTotalData]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /residents/{id}/unpaid-total [get]
func (h *PaymentHandler) UnpaidTotal(c *gin.Context) {
	residentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid resident ID format")
		return
	}

	total, err := h.paymentService.AggregateUnpaid(c.Request.Context(), residentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, UnpaidTotalData{
		ResidentID:  residentID.String(),
		UnpaidTotal: total.IntPart(),
	})
}
