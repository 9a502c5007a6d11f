package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/villahub/backend/internal/application/billing"
)

// PaymentCallbackHandler handles the payment gateway callback endpoint.
// The gateway calls it server to server after a successful charge, so it
// is mounted without authentication.
type PaymentCallbackHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentCallbackHandler creates a new PaymentCallbackHandler
func NewPaymentCallbackHandler(paymentService *billingapp.PaymentService) *PaymentCallbackHandler {
	return &PaymentCallbackHandler{
		paymentService: paymentService,
	}
}

// GatewayCallbackRequest represents a successful-charge notification
// @Description Notification body sent by the payment gateway after a charge succeeds
type GatewayCallbackRequest struct {
	PaymentID     string `json:"payment_id" binding:"required,uuid" example:"7c9f1a2b-3d4e-5f6a-7b8c-9d0e1f2a3b4c"`
	TransactionID string `json:"transaction_id" binding:"required,min=1,max=100" example:"pg_20260325_0001"`
}

// GatewayCallbackResponse acknowledges a callback to the gateway
type GatewayCallbackResponse struct {
	Received bool `json:"received" example:"true"`
}

// HandleGatewayCallback godoc
// @ID           handlePaymentGatewayCallback
// @Summary      Handle payment gateway callback
// @Description  Complete a payment on a successful gateway charge. Redelivered callbacks with the same transaction ID are acknowledged without effect.
// @Tags         payment-callbacks
// @Accept       json
// @Produce      json
// @Param        request body GatewayCallbackRequest true "Gateway notification"
// @Success      200 {object} GatewayCallbackResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /public/payments/gateway-callback [post]
func (h *PaymentCallbackHandler) HandleGatewayCallback(c *gin.Context) {
	var req GatewayCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	paymentID, err := uuid.Parse(req.PaymentID)
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	err = h.paymentService.HandleGatewayCallback(c.Request.Context(), billingapp.GatewayCallbackRequest{
		PaymentID:     paymentID,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, GatewayCallbackResponse{Received: true})
}
