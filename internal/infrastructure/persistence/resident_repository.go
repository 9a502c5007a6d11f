package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/villahub/backend/internal/domain/community"
	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormResidentRepository implements ResidentRepository using GORM
type GormResidentRepository struct {
	db *gorm.DB
}

// NewGormResidentRepository creates a new GormResidentRepository
func NewGormResidentRepository(db *gorm.DB) *GormResidentRepository {
	return &GormResidentRepository{db: db}
}

// FindByID finds a resident by its ID
func (r *GormResidentRepository) FindByID(ctx context.Context, id uuid.UUID) (*community.Resident, error) {
	var model models.ResidentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists all residents of a tenant
func (r *GormResidentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]community.Resident, error) {
	var residentModels []models.ResidentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("moved_in_at ASC").
		Find(&residentModels).Error; err != nil {
		return nil, err
	}

	residents := make([]community.Resident, len(residentModels))
	for i, model := range residentModels {
		residents[i] = *model.ToDomain()
	}
	return residents, nil
}

// residentInfoRow joins a resident with the unit they occupy
type residentInfoRow struct {
	ResidentID   uuid.UUID
	ResidentName string
	UnitID       uuid.UUID
	RoomNumber   string
}

// ListResidents returns the resident read model consumed by invoice creation,
// one row per current resident with their unit
func (r *GormResidentRepository) ListResidents(ctx context.Context, tenantID uuid.UUID) ([]community.ResidentInfo, error) {
	var rows []residentInfoRow
	if err := r.db.WithContext(ctx).
		Model(&models.ResidentModel{}).
		Select("residents.id AS resident_id, residents.name AS resident_name, residents.unit_id AS unit_id, units.room_number AS room_number").
		Joins("JOIN units ON units.id = residents.unit_id").
		Where("residents.tenant_id = ?", tenantID).
		Order("units.room_number ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	infos := make([]community.ResidentInfo, len(rows))
	for i, row := range rows {
		infos[i] = community.ResidentInfo{
			ResidentID:   row.ResidentID,
			ResidentName: row.ResidentName,
			UnitID:       row.UnitID,
			RoomNumber:   row.RoomNumber,
		}
	}
	return infos, nil
}

// CountForTenant counts resident memberships of a tenant
func (r *GormResidentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ResidentModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a resident
func (r *GormResidentRepository) Save(ctx context.Context, resident *community.Resident) error {
	model := models.ResidentModelFromDomain(resident)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a resident membership. The unit and the resident's payment
// history are kept.
func (r *GormResidentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ResidentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormResidentRepository implements both the repository and the
// read-side directory port
var (
	_ community.ResidentRepository = (*GormResidentRepository)(nil)
	_ community.ResidentDirectory  = (*GormResidentRepository)(nil)
)
