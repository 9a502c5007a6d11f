package community

import (
	"time"

	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// TenantCreatedEvent is raised when a new tenant is registered
type TenantCreatedEvent struct {
	shared.BaseDomainEvent
	TenantName string `json:"tenant_name"`
	Address    string `json:"address"`
}

// EventType returns the event type name
func (e *TenantCreatedEvent) EventType() string {
	return "TenantCreated"
}

// NewTenantCreatedEvent creates a new TenantCreatedEvent
func NewTenantCreatedEvent(t *Tenant) *TenantCreatedEvent {
	return &TenantCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TenantCreated", "Tenant", t.ID, t.ID),
		TenantName:      t.Name,
		Address:         t.Address,
	}
}

// TenantAutoBillingConfiguredEvent is raised when auto-billing is enabled
// or reconfigured for a tenant
type TenantAutoBillingConfiguredEvent struct {
	shared.BaseDomainEvent
	BillingDay    int               `json:"billing_day"`
	DefaultAmount valueobject.Money `json:"default_amount"`
}

// EventType returns the event type name
func (e *TenantAutoBillingConfiguredEvent) EventType() string {
	return "TenantAutoBillingConfigured"
}

// NewTenantAutoBillingConfiguredEvent creates a new TenantAutoBillingConfiguredEvent
func NewTenantAutoBillingConfiguredEvent(t *Tenant, day int, amount valueobject.Money) *TenantAutoBillingConfiguredEvent {
	return &TenantAutoBillingConfiguredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TenantAutoBillingConfigured", "Tenant", t.ID, t.ID),
		BillingDay:      day,
		DefaultAmount:   amount,
	}
}

// ResidentMovedInEvent is raised when a resident membership is created
type ResidentMovedInEvent struct {
	shared.BaseDomainEvent
	ResidentName string    `json:"resident_name"`
	UnitID       uuid.UUID `json:"unit_id"`
	MovedInAt    time.Time `json:"moved_in_at"`
}

// EventType returns the event type name
func (e *ResidentMovedInEvent) EventType() string {
	return "ResidentMovedIn"
}

// NewResidentMovedInEvent creates a new ResidentMovedInEvent
func NewResidentMovedInEvent(r *Resident) *ResidentMovedInEvent {
	return &ResidentMovedInEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ResidentMovedIn", "Resident", r.ID, r.TenantID),
		ResidentName:    r.Name,
		UnitID:          r.UnitID,
		MovedInAt:       r.MovedInAt,
	}
}

// ResidentMovedOutEvent is raised when a resident membership is removed
type ResidentMovedOutEvent struct {
	shared.BaseDomainEvent
	ResidentName string    `json:"resident_name"`
	UnitID       uuid.UUID `json:"unit_id"`
}

// EventType returns the event type name
func (e *ResidentMovedOutEvent) EventType() string {
	return "ResidentMovedOut"
}

// NewResidentMovedOutEvent creates a new ResidentMovedOutEvent
func NewResidentMovedOutEvent(r *Resident) *ResidentMovedOutEvent {
	return &ResidentMovedOutEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ResidentMovedOut", "Resident", r.ID, r.TenantID),
		ResidentName:    r.Name,
		UnitID:          r.UnitID,
	}
}
