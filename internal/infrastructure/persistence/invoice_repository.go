package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/villahub/backend/internal/domain/billing"
	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate returns a SELECT ... FOR UPDATE clause
func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormInvoiceRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// CreateWithPayments persists an invoice and all of its payments in one
// transaction. Either every row exists afterwards or none do.
func (r *GormInvoiceRepository) CreateWithPayments(ctx context.Context, invoice *billing.Invoice, payments []billing.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoiceModel := models.InvoiceModelFromDomain(invoice)
		if err := tx.Create(invoiceModel).Error; err != nil {
			return err
		}

		if len(payments) > 0 {
			paymentModels := make([]*models.PaymentModel, len(payments))
			for i := range payments {
				paymentModels[i] = models.PaymentModelFromDomain(&payments[i])
			}
			if err := tx.Create(paymentModels).Error; err != nil {
				return err
			}
		}

		// Save events to outbox within the same transaction
		if r.outboxSaver != nil {
			if events := invoice.GetDomainEvents(); len(events) > 0 {
				if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
					return fmt.Errorf("failed to save events to outbox: %w", err)
				}
			}
		}

		return nil
	})
}

// FindByIDForTenant finds an invoice by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
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

// FindWithPayments loads an invoice together with its payment rows
func (r *GormInvoiceRepository) FindWithPayments(ctx context.Context, tenantID, id uuid.UUID) (*billing.InvoiceWithPayments, error) {
	invoice, err := r.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", id).
		Order("created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}

	return &billing.InvoiceWithPayments{Invoice: invoice, Payments: payments}, nil
}

// FindAllForTenant lists invoices of a tenant with filtering
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// CountForTenant counts invoices of a tenant with filtering
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsForMonth reports whether the tenant already has an invoice for the
// given billing month
func (r *GormInvoiceRepository) ExistsForMonth(ctx context.Context, tenantID uuid.UUID, billingMonth string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND billing_month = ?", tenantID, billingMonth).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateGuarded applies field changes to an invoice inside one transaction
// that locks the invoice row and then verifies no associated payment is
// COMPLETED. Payment writes take the same invoice lock, so a concurrent
// completion either commits before the count and is seen, or blocks until
// the edit commits.
func (r *GormInvoiceRepository) UpdateGuarded(ctx context.Context, tenantID, id uuid.UUID, changes billing.InvoiceChanges) (*billing.Invoice, error) {
	var updated *billing.Invoice

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.InvoiceModel
		if err := tx.
			Clauses(lockForUpdate()).
			Where("tenant_id = ? AND id = ?", tenantID, id).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		var completed int64
		if err := tx.
			Model(&models.PaymentModel{}).
			Where("invoice_id = ? AND status = ?", id, billing.PaymentStatusCompleted).
			Count(&completed).Error; err != nil {
			return err
		}
		if completed > 0 {
			return shared.NewDomainError("INVARIANT_VIOLATION", "Cannot edit invoice: at least one unit has already paid")
		}

		invoice := model.ToDomain()
		if err := invoice.ApplyChanges(changes); err != nil {
			return err
		}

		model.FromDomain(invoice)
		if err := tx.Save(&model).Error; err != nil {
			return err
		}

		if r.outboxSaver != nil {
			if events := invoice.GetDomainEvents(); len(events) > 0 {
				if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
					return fmt.Errorf("failed to save events to outbox: %w", err)
				}
			}
		}

		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("billing_month DESC, created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("memo ILIKE ?", searchPattern)
	}
	if filter.BillingMonth != nil {
		query = query.Where("billing_month = ?", *filter.BillingMonth)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}
	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
