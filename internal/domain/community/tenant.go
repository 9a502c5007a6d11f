package community

import (
	"fmt"
	"time"

	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/domain/shared/valueobject"
)

// Auto-billing days are capped at 28 so the configured day exists in
// every calendar month.
const (
	MinAutoBillingDay = 1
	MaxAutoBillingDay = 28
)

// Tenant represents one managed villa or apartment building.
// It is the multi-tenancy boundary: units, residents, invoices and
// external bills all belong to exactly one tenant.
type Tenant struct {
	shared.BaseAggregateRoot
	Name                 string             `json:"name"`
	Address              string             `json:"address"`
	AutoBillingDay       *int               `json:"auto_billing_day"`       // nil when auto-billing is disabled
	DefaultMonthlyAmount *valueobject.Money `json:"default_monthly_amount"` // fee used by the auto-billing run
}

// NewTenant creates a new tenant
func NewTenant(name, address string) (*Tenant, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot exceed 100 characters")
	}

	t := &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Address:           address,
	}

	t.AddDomainEvent(NewTenantCreatedEvent(t))

	return t, nil
}

// Rename changes the tenant's display name
func (t *Tenant) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot exceed 100 characters")
	}

	t.Name = name
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetAddress updates the tenant's address
func (t *Tenant) SetAddress(address string) {
	t.Address = address
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// ConfigureAutoBilling enables monthly auto-billing on the given
// day-of-month with the given default fee per unit
func (t *Tenant) ConfigureAutoBilling(day int, defaultAmount valueobject.Money) error {
	if day < MinAutoBillingDay || day > MaxAutoBillingDay {
		return shared.NewDomainError("INVALID_BILLING_DAY",
			fmt.Sprintf("Auto-billing day must be between %d and %d", MinAutoBillingDay, MaxAutoBillingDay))
	}
	if !defaultAmount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Default monthly amount must be positive")
	}
	if !defaultAmount.IsWhole() {
		return shared.NewDomainError("INVALID_AMOUNT", "Default monthly amount must be a whole won")
	}

	t.AutoBillingDay = &day
	t.DefaultMonthlyAmount = &defaultAmount
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantAutoBillingConfiguredEvent(t, day, defaultAmount))

	return nil
}

// DisableAutoBilling turns off monthly auto-billing for this tenant
func (t *Tenant) DisableAutoBilling() {
	t.AutoBillingDay = nil
	t.DefaultMonthlyAmount = nil
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// AutoBillingEnabled returns true if the tenant is configured for auto-billing
func (t *Tenant) AutoBillingEnabled() bool {
	return t.AutoBillingDay != nil && t.DefaultMonthlyAmount != nil
}

// ShouldBillOn returns true if the tenant's auto-billing day matches
// the given day-of-month
func (t *Tenant) ShouldBillOn(dayOfMonth int) bool {
	return t.AutoBillingEnabled() && *t.AutoBillingDay == dayOfMonth
}
