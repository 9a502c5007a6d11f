package billing

import (
	"context"

	"github.com/villahub/backend/internal/domain/billing"
	"github.com/villahub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NotificationHandler reacts to billing events that should notify someone:
// a new invoice for residents, a self-reported external bill for admins,
// a completed payment for the books. Message content and delivery are
// handled elsewhere; this handler records the trigger and its inputs.
type NotificationHandler struct {
	logger *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *NotificationHandler) EventTypes() []string {
	return []string{
		"InvoiceCreated",
		"PaymentCompleted",
		"ExternalBillSelfReported",
	}
}

// Handle processes a billing event
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *billing.InvoiceCreatedEvent:
		h.logger.Info("Notification trigger: invoice issued",
			zap.String("tenant_id", e.TenantID().String()),
			zap.String("invoice_id", e.InvoiceID.String()),
			zap.String("billing_month", e.BillingMonth),
			zap.String("total_amount", e.TotalAmount.String()),
			zap.Int("recipient_count", e.PaymentCount))
	case *billing.PaymentCompletedEvent:
		h.logger.Info("Notification trigger: payment completed",
			zap.String("tenant_id", e.TenantID().String()),
			zap.String("payment_id", e.PaymentID.String()),
			zap.String("resident_id", e.ResidentID.String()),
			zap.String("amount", e.Amount.String()))
	case *billing.ExternalBillSelfReportedEvent:
		h.logger.Info("Notification trigger: external bill awaiting confirmation",
			zap.String("tenant_id", e.TenantID().String()),
			zap.String("bill_id", e.BillID.String()),
			zap.String("target", e.TargetName),
			zap.String("amount", e.Amount.String()))
	default:
		h.logger.Debug("Ignoring event without notification rule",
			zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*NotificationHandler)(nil)
