package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/villahub/backend/internal/domain/billing"
	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExternalBillRepository implements ExternalBillRepository using GORM
type GormExternalBillRepository struct {
	db *gorm.DB
}

// NewGormExternalBillRepository creates a new GormExternalBillRepository
func NewGormExternalBillRepository(db *gorm.DB) *GormExternalBillRepository {
	return &GormExternalBillRepository{db: db}
}

// FindByID finds an external bill by ID. Lookups through the public payment
// link are not tenant-scoped; the unguessable bill ID is the credential.
func (r *GormExternalBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.ExternalBill, error) {
	var model models.ExternalBillModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an external bill by ID within a tenant
func (r *GormExternalBillRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.ExternalBill, error) {
	var model models.ExternalBillModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists external bills of a tenant with filtering
func (r *GormExternalBillRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.ExternalBillFilter) ([]billing.ExternalBill, error) {
	var billModels []models.ExternalBillModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ExternalBillModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&billModels).Error; err != nil {
		return nil, err
	}

	bills := make([]billing.ExternalBill, len(billModels))
	for i, model := range billModels {
		bills[i] = *model.ToDomain()
	}
	return bills, nil
}

// CountForTenant counts external bills of a tenant with filtering
func (r *GormExternalBillRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.ExternalBillFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.ExternalBillModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an external bill
func (r *GormExternalBillRepository) Save(ctx context.Context, bill *billing.ExternalBill) error {
	model := models.ExternalBillModelFromDomain(bill)
	return r.db.WithContext(ctx).Save(model).Error
}

// applyFilter applies filter options to the query
func (r *GormExternalBillRepository) applyFilter(query *gorm.DB, filter billing.ExternalBillFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, ExternalBillSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormExternalBillRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.ExternalBillFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("target_name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Overdue != nil {
		now := time.Now()
		if *filter.Overdue {
			query = query.Where("due_date IS NOT NULL AND due_date < ? AND status <> ?", now, billing.ExternalBillStatusCompleted)
		} else {
			query = query.Where("due_date IS NULL OR due_date >= ? OR status = ?", now, billing.ExternalBillStatusCompleted)
		}
	}
	return query
}

// Ensure GormExternalBillRepository implements ExternalBillRepository
var _ billing.ExternalBillRepository = (*GormExternalBillRepository)(nil)
