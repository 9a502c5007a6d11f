package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceType distinguishes equal-fee invoices from itemized ones
type InvoiceType string

const (
	InvoiceTypeFixed    InvoiceType = "FIXED"    // Equal per-unit fee, total = fee x unit count
	InvoiceTypeVariable InvoiceType = "VARIABLE" // Itemized real costs split across units
)

// IsValid checks if the invoice type is valid
func (t InvoiceType) IsValid() bool {
	return t == InvoiceTypeFixed || t == InvoiceTypeVariable
}

// String returns the string representation of InvoiceType
func (t InvoiceType) String() string {
	return string(t)
}

var billingMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidateBillingMonth checks a billing month string against the YYYY-MM format
func ValidateBillingMonth(month string) error {
	if !billingMonthPattern.MatchString(month) {
		return shared.NewDomainError("INVALID_BILLING_MONTH", fmt.Sprintf("Billing month must match YYYY-MM, got %q", month))
	}
	return nil
}

// InvoiceItem is one line of a VARIABLE invoice's cost breakdown
type InvoiceItem struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// InvoiceItems is an ordered cost breakdown stored as JSONB.
// A nil slice means the invoice carries no breakdown (FIXED invoices).
type InvoiceItems []InvoiceItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (items InvoiceItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (items *InvoiceItems) Scan(value interface{}) error {
	if value == nil {
		*items = InvoiceItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InvoiceItems: unsupported type")
	}

	if len(bytes) == 0 {
		*items = InvoiceItems{}
		return nil
	}

	return json.Unmarshal(bytes, items)
}

// Sum returns the total of all item amounts
func (items InvoiceItems) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Amount)
	}
	return sum
}

// Validate checks that every item has a label and a positive whole-won amount
func (items InvoiceItems) Validate() error {
	for i, item := range items {
		if item.Label == "" {
			return shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Item %d has no label", i))
		}
		if !item.Amount.IsPositive() {
			return shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Item %q must have a positive amount", item.Label))
		}
		if !item.Amount.Equal(item.Amount.Truncate(0)) {
			return shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Item %q amount must be a whole won", item.Label))
		}
	}
	return nil
}

// Invoice represents one billing event for a tenant in one billing month.
// It is created atomically with one Payment per resident and becomes
// immutable once any of those payments completes.
type Invoice struct {
	shared.TenantAggregateRoot
	BillingMonth      string          `json:"billing_month"` // YYYY-MM
	Memo              string          `json:"memo"`
	Type              InvoiceType     `json:"type"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	AmountPerResident decimal.Decimal `json:"amount_per_resident"` // display figure, ceiling-rounded for VARIABLE
	Items             InvoiceItems    `json:"items"`               // breakdown, VARIABLE only
}

// NewFixedInvoice creates a FIXED invoice: every unit owes the same fee,
// the total is the fee multiplied by the unit count.
func NewFixedInvoice(tenantID uuid.UUID, billingMonth, memo string, perUnitAmount valueobject.Money, unitCount int) (*Invoice, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if err := ValidateBillingMonth(billingMonth); err != nil {
		return nil, err
	}
	if unitCount <= 0 {
		return nil, shared.NewDomainError("NOT_FOUND", "No residents registered for this tenant")
	}
	if !perUnitAmount.IsPositive() || !perUnitAmount.IsWhole() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Per-unit amount must be a positive whole won")
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BillingMonth:        billingMonth,
		Memo:                memo,
		Type:                InvoiceTypeFixed,
		TotalAmount:         perUnitAmount.Amount().Mul(decimal.NewFromInt(int64(unitCount))),
		AmountPerResident:   perUnitAmount.Amount(),
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv, unitCount))

	return inv, nil
}

// NewFixedInvoiceFromTotal creates a FIXED invoice from a total that is
// split evenly across the units. The per-resident figure is the total
// divided by the unit count, rounded up to the next won; payment rows are
// allocated so their sum still equals the total exactly.
func NewFixedInvoiceFromTotal(tenantID uuid.UUID, billingMonth, memo string, totalAmount valueobject.Money, unitCount int) (*Invoice, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if err := ValidateBillingMonth(billingMonth); err != nil {
		return nil, err
	}
	if unitCount <= 0 {
		return nil, shared.NewDomainError("NOT_FOUND", "No residents registered for this tenant")
	}
	if !totalAmount.IsPositive() || !totalAmount.IsWhole() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be a positive whole won")
	}

	perResident := totalAmount.Amount().Div(decimal.NewFromInt(int64(unitCount))).Ceil()

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BillingMonth:        billingMonth,
		Memo:                memo,
		Type:                InvoiceTypeFixed,
		TotalAmount:         totalAmount.Amount(),
		AmountPerResident:   perResident,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv, unitCount))

	return inv, nil
}

// NewVariableInvoice creates a VARIABLE invoice from an itemized cost
// breakdown. The total is the sum of the items; the per-resident figure
// is the total divided by the unit count, rounded up to the next won.
func NewVariableInvoice(tenantID uuid.UUID, billingMonth, memo string, items InvoiceItems, unitCount int) (*Invoice, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if err := ValidateBillingMonth(billingMonth); err != nil {
		return nil, err
	}
	if unitCount <= 0 {
		return nil, shared.NewDomainError("NOT_FOUND", "No residents registered for this tenant")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "A VARIABLE invoice requires at least one item")
	}
	if err := items.Validate(); err != nil {
		return nil, err
	}

	total := items.Sum()
	perResident := total.Div(decimal.NewFromInt(int64(unitCount))).Ceil()

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BillingMonth:        billingMonth,
		Memo:                memo,
		Type:                InvoiceTypeVariable,
		TotalAmount:         total,
		AmountPerResident:   perResident,
		Items:               items,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv, unitCount))

	return inv, nil
}

// InvoiceChanges carries the mutable invoice fields for a guarded update.
// Nil fields are left untouched.
type InvoiceChanges struct {
	BillingMonth *string
	Memo         *string
	Type         *InvoiceType
	TotalAmount  *valueobject.Money
	Items        *InvoiceItems
}

// IsEmpty returns true if no field is set
func (c InvoiceChanges) IsEmpty() bool {
	return c.BillingMonth == nil && c.Memo == nil && c.Type == nil && c.TotalAmount == nil && c.Items == nil
}

// ApplyChanges applies the given field changes to the invoice. The caller
// must have verified that no associated payment is COMPLETED; the check
// and this mutation run inside one transaction.
func (inv *Invoice) ApplyChanges(changes InvoiceChanges) error {
	if changes.IsEmpty() {
		return shared.NewDomainError("INVALID_INPUT", "No invoice fields to update")
	}

	if changes.BillingMonth != nil {
		if err := ValidateBillingMonth(*changes.BillingMonth); err != nil {
			return err
		}
	}
	if changes.Type != nil && !changes.Type.IsValid() {
		return shared.NewDomainError("INVALID_INVOICE_TYPE", fmt.Sprintf("Unsupported invoice type %q", *changes.Type))
	}
	if changes.TotalAmount != nil {
		if !changes.TotalAmount.IsPositive() || !changes.TotalAmount.IsWhole() {
			return shared.NewDomainError("INVALID_AMOUNT", "Total amount must be a positive whole won")
		}
	}
	if changes.Items != nil {
		if err := changes.Items.Validate(); err != nil {
			return err
		}
	}

	if changes.BillingMonth != nil {
		inv.BillingMonth = *changes.BillingMonth
	}
	if changes.Memo != nil {
		inv.Memo = *changes.Memo
	}
	if changes.Type != nil {
		inv.Type = *changes.Type
		if inv.Type == InvoiceTypeFixed {
			inv.Items = nil
		}
	}
	if changes.TotalAmount != nil {
		inv.TotalAmount = changes.TotalAmount.Amount()
	}
	if changes.Items != nil {
		inv.Items = *changes.Items
		inv.TotalAmount = inv.Items.Sum()
	}

	if inv.Type == InvoiceTypeVariable {
		if len(inv.Items) == 0 {
			return shared.NewDomainError("INVALID_ITEMS", "A VARIABLE invoice requires an item breakdown")
		}
		if !inv.Items.Sum().Equal(inv.TotalAmount) {
			return shared.NewDomainError("INVALID_ITEMS", "Item amounts must sum to the invoice total")
		}
	}

	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceUpdatedEvent(inv))

	return nil
}

// GetTotalAmountMoney returns the invoice total as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(inv.TotalAmount, valueobject.KRW)
	return m
}

// GetAmountPerResidentMoney returns the per-resident display figure as Money
func (inv *Invoice) GetAmountPerResidentMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(inv.AmountPerResident, valueobject.KRW)
	return m
}

// IsItemized returns true if the invoice carries a cost breakdown
func (inv *Invoice) IsItemized() bool {
	return len(inv.Items) > 0
}
