package billing

import (
	"time"

	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExternalBillStatus represents the status of an external bill
type ExternalBillStatus string

const (
	ExternalBillStatusPending             ExternalBillStatus = "PENDING"
	ExternalBillStatusPendingConfirmation ExternalBillStatus = "PENDING_CONFIRMATION"
	ExternalBillStatusCompleted           ExternalBillStatus = "COMPLETED"
)

// IsValid checks if the status is a valid ExternalBillStatus
func (s ExternalBillStatus) IsValid() bool {
	switch s {
	case ExternalBillStatusPending, ExternalBillStatusPendingConfirmation, ExternalBillStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of ExternalBillStatus
func (s ExternalBillStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is possible
func (s ExternalBillStatus) IsTerminal() bool {
	return s == ExternalBillStatusCompleted
}

// ExternalBill is a one-off bill to a non-resident billee (contractor,
// visitor). The billee self-reports payment through a public link and an
// admin confirms it; once COMPLETED the bill never changes again.
type ExternalBill struct {
	shared.TenantAggregateRoot
	TargetName  string             `json:"target_name"`
	Phone       string             `json:"phone"`
	Amount      decimal.Decimal    `json:"amount"`
	Description string             `json:"description"`
	DueDate     *time.Time         `json:"due_date"`
	Status      ExternalBillStatus `json:"status"`
	ReportedAt  *time.Time         `json:"reported_at"`  // when the billee self-reported
	ConfirmedAt *time.Time         `json:"confirmed_at"` // when an admin confirmed
}

// NewExternalBill creates a new external bill at status PENDING
func NewExternalBill(tenantID uuid.UUID, targetName, phone string, amount valueobject.Money, description string, dueDate *time.Time) (*ExternalBill, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if targetName == "" {
		return nil, shared.NewDomainError("INVALID_TARGET", "Target name cannot be empty")
	}
	if len(targetName) > 100 {
		return nil, shared.NewDomainError("INVALID_TARGET", "Target name cannot exceed 100 characters")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Bill amount must be positive")
	}
	if !amount.IsWhole() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Bill amount must be a whole won")
	}

	bill := &ExternalBill{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TargetName:          targetName,
		Phone:               phone,
		Amount:              amount.Amount(),
		Description:         description,
		DueDate:             dueDate,
		Status:              ExternalBillStatusPending,
	}

	bill.AddDomainEvent(NewExternalBillCreatedEvent(bill))

	return bill, nil
}

// SelfReportPaid records that the billee reported the bill as paid via the
// public link. Reporting twice is a no-op; a completed bill rejects it.
func (b *ExternalBill) SelfReportPaid() error {
	if b.Status == ExternalBillStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Bill is already completed")
	}
	if b.Status == ExternalBillStatusPendingConfirmation {
		return nil
	}

	now := time.Now()
	b.Status = ExternalBillStatusPendingConfirmation
	b.ReportedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	b.AddDomainEvent(NewExternalBillSelfReportedEvent(b))

	return nil
}

// Confirm marks the bill as COMPLETED. Admins may confirm from any prior
// state, not only after a self-report.
func (b *ExternalBill) Confirm() error {
	if b.Status == ExternalBillStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Bill is already completed")
	}

	now := time.Now()
	b.Status = ExternalBillStatusCompleted
	b.ConfirmedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	b.AddDomainEvent(NewExternalBillConfirmedEvent(b))

	return nil
}

// IsOverdue returns true if the bill is past its due date and not completed
func (b *ExternalBill) IsOverdue() bool {
	if b.Status.IsTerminal() || b.DueDate == nil {
		return false
	}
	return time.Now().After(*b.DueDate)
}

// GetAmountMoney returns the bill amount as Money
func (b *ExternalBill) GetAmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(b.Amount, valueobject.KRW)
	return m
}
