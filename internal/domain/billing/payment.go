package billing

import (
	"fmt"
	"time"

	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment obligation
type PaymentStatus string

const (
	PaymentStatusPending             PaymentStatus = "PENDING"              // Created, not yet paid
	PaymentStatusPendingConfirmation PaymentStatus = "PENDING_CONFIRMATION" // Payer self-reported, awaiting admin confirmation
	PaymentStatusCompleted           PaymentStatus = "COMPLETED"            // Money received and confirmed
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPendingConfirmation, PaymentStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is possible
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted
}

// CanTransitionTo returns true if the transition to the target status is
// legal. Transitions are monotonic forward: PENDING may move to either
// PENDING_CONFIRMATION or COMPLETED, PENDING_CONFIRMATION only to
// COMPLETED, and COMPLETED nowhere.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return target == PaymentStatusPendingConfirmation || target == PaymentStatusCompleted
	case PaymentStatusPendingConfirmation:
		return target == PaymentStatusCompleted
	}
	return false
}

// Payment is one resident's obligation against one invoice. The amount is
// fixed at creation and never recalculated; only the status moves.
type Payment struct {
	shared.TenantAggregateRoot
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	ResidentID  uuid.UUID       `json:"resident_id"`
	UnitID      uuid.UUID       `json:"unit_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      PaymentStatus   `json:"status"`
	CompletedAt *time.Time      `json:"completed_at"`
}

// NewPayment creates a new payment obligation at status PENDING
func NewPayment(tenantID, invoiceID, residentID, unitID uuid.UUID, amount valueobject.Money) (*Payment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if residentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESIDENT", "Resident ID cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}
	if !amount.IsWhole() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be a whole won")
	}

	return &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceID:           invoiceID,
		ResidentID:          residentID,
		UnitID:              unitID,
		Amount:              amount.Amount(),
		Status:              PaymentStatusPending,
	}, nil
}

// UpdateStatus moves the payment to a new status, enforcing the forward
// transition table
func (p *Payment) UpdateStatus(target PaymentStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown payment status %q", target))
	}
	if !p.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot transition payment from %s to %s", p.Status, target))
	}

	p.Status = target
	now := time.Now()
	if target == PaymentStatusCompleted {
		p.CompletedAt = &now
		p.AddDomainEvent(NewPaymentCompletedEvent(p))
	}
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// Complete moves the payment directly to COMPLETED (gateway confirmation path)
func (p *Payment) Complete() error {
	return p.UpdateStatus(PaymentStatusCompleted)
}

// IsCompleted returns true if the payment has been settled
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// IsPending returns true if the payment is still unpaid
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.Amount, valueobject.KRW)
	return m
}
