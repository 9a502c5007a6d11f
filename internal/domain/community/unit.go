package community

import (
	"time"

	"github.com/villahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Unit represents a billable household within a tenant.
// Units are created when a resident first moves in and are never
// deleted: billing history must survive move-outs, so only the
// resident membership record is removed.
type Unit struct {
	shared.TenantAggregateRoot
	RoomNumber string `json:"room_number"`
}

// NewUnit creates a new unit
func NewUnit(tenantID uuid.UUID, roomNumber string) (*Unit, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if roomNumber == "" {
		return nil, shared.NewDomainError("INVALID_ROOM_NUMBER", "Room number cannot be empty")
	}
	if len(roomNumber) > 20 {
		return nil, shared.NewDomainError("INVALID_ROOM_NUMBER", "Room number cannot exceed 20 characters")
	}

	return &Unit{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		RoomNumber:          roomNumber,
	}, nil
}

// SetRoomNumber updates the human-readable room label
func (u *Unit) SetRoomNumber(roomNumber string) error {
	if roomNumber == "" {
		return shared.NewDomainError("INVALID_ROOM_NUMBER", "Room number cannot be empty")
	}
	if len(roomNumber) > 20 {
		return shared.NewDomainError("INVALID_ROOM_NUMBER", "Room number cannot exceed 20 characters")
	}

	u.RoomNumber = roomNumber
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}
