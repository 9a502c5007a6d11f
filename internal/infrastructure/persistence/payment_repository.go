package persistence

import (
	"context"
	"errors"

	"github.com/villahub/backend/internal/domain/billing"
	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save updates a payment inside a transaction that first locks the parent
// invoice row. Status changes therefore serialize with the completed-payment
// guard on invoice edits: a completion cannot commit while an edit holds the
// invoice lock, and the guard sees every completion that committed before it
// acquired the lock.
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.InvoiceModel
		if err := tx.
			Clauses(lockForUpdate()).
			Select("id").
			Where("id = ?", payment.InvoiceID).
			First(&invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		model := models.PaymentModelFromDomain(payment)
		return tx.Save(model).Error
	})
}

// paymentForInvoiceRow is the flat scan target for the invoice ledger view
type paymentForInvoiceRow struct {
	models.PaymentModel
	ResidentName string
	RoomNumber   string
}

// ListForInvoice returns all payments of one invoice joined with resident
// name and room number, oldest first. Residents who moved out appear with
// an empty name but the room number survives on the unit.
func (r *GormPaymentRepository) ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.PaymentForInvoice, error) {
	var rows []paymentForInvoiceRow
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("payments.*, COALESCE(residents.name, '') AS resident_name, COALESCE(units.room_number, '') AS room_number").
		Joins("LEFT JOIN residents ON residents.id = payments.resident_id").
		Joins("LEFT JOIN units ON units.id = payments.unit_id").
		Where("payments.invoice_id = ?", invoiceID).
		Order("payments.created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]billing.PaymentForInvoice, len(rows))
	for i, row := range rows {
		out[i] = billing.PaymentForInvoice{
			Payment:      *row.PaymentModel.ToDomain(),
			ResidentName: row.ResidentName,
			RoomNumber:   row.RoomNumber,
		}
	}
	return out, nil
}

// paymentForResidentRow is the flat scan target for the resident ledger view
type paymentForResidentRow struct {
	models.PaymentModel
	BillingMonth string
	InvoiceType  billing.InvoiceType
	InvoiceMemo  string
	InvoiceTotal decimal.Decimal
	TenantName   string
}

// ListForResident returns all payments of a resident across every invoice
// and tenant, newest first
func (r *GormPaymentRepository) ListForResident(ctx context.Context, residentID uuid.UUID) ([]billing.PaymentForResident, error) {
	var rows []paymentForResidentRow
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("payments.*, invoices.billing_month AS billing_month, invoices.type AS invoice_type, invoices.memo AS invoice_memo, invoices.total_amount AS invoice_total, tenants.name AS tenant_name").
		Joins("JOIN invoices ON invoices.id = payments.invoice_id").
		Joins("JOIN tenants ON tenants.id = payments.tenant_id").
		Where("payments.resident_id = ?", residentID).
		Order("payments.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]billing.PaymentForResident, len(rows))
	for i, row := range rows {
		out[i] = billing.PaymentForResident{
			Payment:      *row.PaymentModel.ToDomain(),
			BillingMonth: row.BillingMonth,
			InvoiceType:  row.InvoiceType,
			InvoiceMemo:  row.InvoiceMemo,
			InvoiceTotal: row.InvoiceTotal,
			TenantName:   row.TenantName,
		}
	}
	return out, nil
}

// SumUnpaidForResident returns the sum of PENDING payment amounts for a resident
func (r *GormPaymentRepository) SumUnpaidForResident(ctx context.Context, residentID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("SUM(amount)").
		Where("resident_id = ? AND status = ?", residentID, billing.PaymentStatusPending).
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// HasCompletedForInvoice reports whether any payment of the invoice is COMPLETED
func (r *GormPaymentRepository) HasCompletedForInvoice(ctx context.Context, invoiceID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("invoice_id = ? AND status = ?", invoiceID, billing.PaymentStatusCompleted).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
