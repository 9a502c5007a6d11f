package community

import (
	"time"

	"github.com/villahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Resident represents an occupant's membership in a unit.
// The membership record is removed on move-out while the unit and all
// billing rows that reference the resident ID remain.
type Resident struct {
	shared.TenantAggregateRoot
	UnitID    uuid.UUID `json:"unit_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	MovedInAt time.Time `json:"moved_in_at"`
}

// NewResident creates a new resident membership
func NewResident(tenantID, unitID uuid.UUID, name, phone string) (*Resident, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_RESIDENT_NAME", "Resident name cannot be empty")
	}
	if len(name) > 50 {
		return nil, shared.NewDomainError("INVALID_RESIDENT_NAME", "Resident name cannot exceed 50 characters")
	}

	r := &Resident{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UnitID:              unitID,
		Name:                name,
		Phone:               phone,
		MovedInAt:           time.Now(),
	}

	r.AddDomainEvent(NewResidentMovedInEvent(r))

	return r, nil
}

// SetPhone updates the resident's contact number
func (r *Resident) SetPhone(phone string) {
	r.Phone = phone
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// Rename updates the resident's name
func (r *Resident) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_RESIDENT_NAME", "Resident name cannot be empty")
	}
	if len(name) > 50 {
		return shared.NewDomainError("INVALID_RESIDENT_NAME", "Resident name cannot exceed 50 characters")
	}

	r.Name = name
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// ResidentInfo is the read model consumed by invoice creation: one row
// per resident with the unit they occupy.
type ResidentInfo struct {
	ResidentID   uuid.UUID `json:"resident_id"`
	ResidentName string    `json:"resident_name"`
	UnitID       uuid.UUID `json:"unit_id"`
	RoomNumber   string    `json:"room_number"`
}
