package billing

import (
	"github.com/villahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceCreatedEvent is raised when an invoice and its payments are created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	BillingMonth string          `json:"billing_month"`
	InvoiceType  InvoiceType     `json:"invoice_type"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaymentCount int             `json:"payment_count"`
	Memo         string          `json:"memo,omitempty"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice, paymentCount int) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		BillingMonth:    inv.BillingMonth,
		InvoiceType:     inv.Type,
		TotalAmount:     inv.TotalAmount,
		PaymentCount:    paymentCount,
		Memo:            inv.Memo,
	}
}

// InvoiceUpdatedEvent is raised when a still-mutable invoice is edited
type InvoiceUpdatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	BillingMonth string          `json:"billing_month"`
	InvoiceType  InvoiceType     `json:"invoice_type"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *InvoiceUpdatedEvent) EventType() string {
	return "InvoiceUpdated"
}

// NewInvoiceUpdatedEvent creates a new InvoiceUpdatedEvent
func NewInvoiceUpdatedEvent(inv *Invoice) *InvoiceUpdatedEvent {
	return &InvoiceUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceUpdated", "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		BillingMonth:    inv.BillingMonth,
		InvoiceType:     inv.Type,
		TotalAmount:     inv.TotalAmount,
	}
}
