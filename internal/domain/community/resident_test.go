package community

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnit(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates unit with valid input", func(t *testing.T) {
		unit, err := NewUnit(tenantID, "101")
		require.NoError(t, err)
		assert.Equal(t, tenantID, unit.TenantID)
		assert.Equal(t, "101", unit.RoomNumber)
	})

	t.Run("rejects empty tenant", func(t *testing.T) {
		_, err := NewUnit(uuid.Nil, "101")
		assert.Error(t, err)
	})

	t.Run("rejects empty room number", func(t *testing.T) {
		_, err := NewUnit(tenantID, "")
		assert.Error(t, err)
	})
}

func TestUnitSetRoomNumber(t *testing.T) {
	unit, err := NewUnit(uuid.New(), "101")
	require.NoError(t, err)

	require.NoError(t, unit.SetRoomNumber("201"))
	assert.Equal(t, "201", unit.RoomNumber)

	assert.Error(t, unit.SetRoomNumber(""))
}

func TestNewResident(t *testing.T) {
	tenantID := uuid.New()
	unitID := uuid.New()

	t.Run("creates resident with valid input", func(t *testing.T) {
		resident, err := NewResident(tenantID, unitID, "Kim Minsoo", "010-1234-5678")
		require.NoError(t, err)
		assert.Equal(t, tenantID, resident.TenantID)
		assert.Equal(t, unitID, resident.UnitID)
		assert.Equal(t, "Kim Minsoo", resident.Name)
		assert.False(t, resident.MovedInAt.IsZero())
		assert.Len(t, resident.GetDomainEvents(), 1)
		assert.Equal(t, "ResidentMovedIn", resident.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects missing references", func(t *testing.T) {
		_, err := NewResident(uuid.Nil, unitID, "Kim Minsoo", "")
		assert.Error(t, err)

		_, err = NewResident(tenantID, uuid.Nil, "Kim Minsoo", "")
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewResident(tenantID, unitID, "", "")
		assert.Error(t, err)
	})
}

func TestResidentRename(t *testing.T) {
	resident, err := NewResident(uuid.New(), uuid.New(), "Kim Minsoo", "")
	require.NoError(t, err)

	require.NoError(t, resident.Rename("Lee Jiwon"))
	assert.Equal(t, "Lee Jiwon", resident.Name)

	assert.Error(t, resident.Rename(""))
}
