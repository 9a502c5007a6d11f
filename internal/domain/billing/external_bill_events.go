package billing

import (
	"time"

	"github.com/villahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExternalBillCreatedEvent is raised when an external bill is issued
type ExternalBillCreatedEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID       `json:"bill_id"`
	TargetName string          `json:"target_name"`
	Phone      string          `json:"phone"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    *time.Time      `json:"due_date,omitempty"`
}

// EventType returns the event type name
func (e *ExternalBillCreatedEvent) EventType() string {
	return "ExternalBillCreated"
}

// NewExternalBillCreatedEvent creates a new ExternalBillCreatedEvent
func NewExternalBillCreatedEvent(b *ExternalBill) *ExternalBillCreatedEvent {
	return &ExternalBillCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExternalBillCreated", "ExternalBill", b.ID, b.TenantID),
		BillID:          b.ID,
		TargetName:      b.TargetName,
		Phone:           b.Phone,
		Amount:          b.Amount,
		DueDate:         b.DueDate,
	}
}

// ExternalBillSelfReportedEvent is raised when the billee reports payment
// through the public link
type ExternalBillSelfReportedEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID       `json:"bill_id"`
	TargetName string          `json:"target_name"`
	Amount     decimal.Decimal `json:"amount"`
	ReportedAt time.Time       `json:"reported_at"`
}

// EventType returns the event type name
func (e *ExternalBillSelfReportedEvent) EventType() string {
	return "ExternalBillSelfReported"
}

// NewExternalBillSelfReportedEvent creates a new ExternalBillSelfReportedEvent
func NewExternalBillSelfReportedEvent(b *ExternalBill) *ExternalBillSelfReportedEvent {
	reportedAt := time.Now()
	if b.ReportedAt != nil {
		reportedAt = *b.ReportedAt
	}
	return &ExternalBillSelfReportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExternalBillSelfReported", "ExternalBill", b.ID, b.TenantID),
		BillID:          b.ID,
		TargetName:      b.TargetName,
		Amount:          b.Amount,
		ReportedAt:      reportedAt,
	}
}

// ExternalBillConfirmedEvent is raised when an admin confirms payment
type ExternalBillConfirmedEvent struct {
	shared.BaseDomainEvent
	BillID      uuid.UUID       `json:"bill_id"`
	TargetName  string          `json:"target_name"`
	Amount      decimal.Decimal `json:"amount"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
}

// EventType returns the event type name
func (e *ExternalBillConfirmedEvent) EventType() string {
	return "ExternalBillConfirmed"
}

// NewExternalBillConfirmedEvent creates a new ExternalBillConfirmedEvent
func NewExternalBillConfirmedEvent(b *ExternalBill) *ExternalBillConfirmedEvent {
	confirmedAt := time.Now()
	if b.ConfirmedAt != nil {
		confirmedAt = *b.ConfirmedAt
	}
	return &ExternalBillConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExternalBillConfirmed", "ExternalBill", b.ID, b.TenantID),
		BillID:          b.ID,
		TargetName:      b.TargetName,
		Amount:          b.Amount,
		ConfirmedAt:     confirmedAt,
	}
}
