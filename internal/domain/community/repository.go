package community

import (
	"context"

	"github.com/villahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	// FindByID finds a tenant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindAll lists all tenants with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Tenant, error)

	// FindByAutoBillingDay finds tenants configured to auto-bill on the given day-of-month
	FindByAutoBillingDay(ctx context.Context, day int) ([]Tenant, error)

	// Save creates or updates a tenant
	Save(ctx context.Context, tenant *Tenant) error

	// Count counts tenants with filtering
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// UnitRepository defines the interface for unit persistence.
// Units are never deleted.
type UnitRepository interface {
	// FindByID finds a unit by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)

	// FindByRoomNumber finds a unit by room number within a tenant
	FindByRoomNumber(ctx context.Context, tenantID uuid.UUID, roomNumber string) (*Unit, error)

	// FindAllForTenant lists all units of a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Unit, error)

	// Save creates or updates a unit
	Save(ctx context.Context, unit *Unit) error
}

// ResidentRepository defines the interface for resident membership persistence
type ResidentRepository interface {
	// FindByID finds a resident by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Resident, error)

	// FindAllForTenant lists all residents of a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Resident, error)

	// ListResidents returns the resident read model consumed by invoice creation
	ListResidents(ctx context.Context, tenantID uuid.UUID) ([]ResidentInfo, error)

	// CountForTenant counts resident memberships of a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// Save creates or updates a resident
	Save(ctx context.Context, resident *Resident) error

	// Delete removes a resident membership (move-out)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ResidentDirectory is the read-side port consumed by invoice creation
// and the auto-billing scheduler
type ResidentDirectory interface {
	ListResidents(ctx context.Context, tenantID uuid.UUID) ([]ResidentInfo, error)
}
