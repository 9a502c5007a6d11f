package billing

import (
	"context"
	"time"

	"github.com/villahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceWithPayments bundles an invoice with its payment rows
type InvoiceWithPayments struct {
	Invoice  *Invoice
	Payments []Payment
}

// PaymentForInvoice is the ledger view of one payment joined with the
// occupant of the unit it bills, ordered oldest first
type PaymentForInvoice struct {
	Payment      Payment `json:"payment"`
	ResidentName string  `json:"resident_name"`
	RoomNumber   string  `json:"room_number"`
}

// PaymentForResident is the ledger view of one payment joined with its
// parent invoice and the invoice's tenant, ordered newest first
type PaymentForResident struct {
	Payment      Payment         `json:"payment"`
	BillingMonth string          `json:"billing_month"`
	InvoiceType  InvoiceType     `json:"invoice_type"`
	InvoiceMemo  string          `json:"invoice_memo"`
	InvoiceTotal decimal.Decimal `json:"invoice_total"`
	TenantName   string          `json:"tenant_name"`
}

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	BillingMonth *string
	Type         *InvoiceType
	FromDate     *time.Time
	ToDate       *time.Time
}

// InvoiceRepository defines the interface for invoice persistence.
// Invoice creation always writes the invoice and all of its payments in
// one transaction; updates are guarded against completed payments.
type InvoiceRepository interface {
	// CreateWithPayments persists an invoice and all of its payments
	// atomically. Either every row exists afterwards or none do.
	CreateWithPayments(ctx context.Context, invoice *Invoice, payments []Payment) error

	// FindByIDForTenant finds an invoice by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindWithPayments loads an invoice together with its payment rows
	FindWithPayments(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceWithPayments, error)

	// FindAllForTenant lists invoices of a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// CountForTenant counts invoices of a tenant with filtering
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) (int64, error)

	// ExistsForMonth reports whether the tenant already has an invoice
	// for the given billing month. Duplicates are allowed but logged.
	ExistsForMonth(ctx context.Context, tenantID uuid.UUID, billingMonth string) (bool, error)

	// UpdateGuarded applies field changes to an invoice inside one
	// transaction that first verifies no associated payment is COMPLETED.
	// A completed payment fails the update with ErrInvariantViolation
	// and leaves the invoice untouched.
	UpdateGuarded(ctx context.Context, tenantID, id uuid.UUID, changes InvoiceChanges) (*Invoice, error)
}

// PaymentRepository defines the interface for payment persistence and the
// ledger's read views
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// Save updates a payment
	Save(ctx context.Context, payment *Payment) error

	// ListForInvoice returns all payments of one invoice joined with
	// resident name and room number, oldest first
	ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]PaymentForInvoice, error)

	// ListForResident returns all payments of a resident across every
	// invoice and tenant, joined with invoice and tenant fields, newest first
	ListForResident(ctx context.Context, residentID uuid.UUID) ([]PaymentForResident, error)

	// SumUnpaidForResident returns the sum of PENDING payment amounts
	// for a resident
	SumUnpaidForResident(ctx context.Context, residentID uuid.UUID) (decimal.Decimal, error)

	// HasCompletedForInvoice reports whether any payment of the invoice
	// is COMPLETED
	HasCompletedForInvoice(ctx context.Context, invoiceID uuid.UUID) (bool, error)
}

// ExternalBillFilter defines filtering options for external bill queries
type ExternalBillFilter struct {
	shared.Filter
	Status  *ExternalBillStatus
	Overdue *bool
}

// ExternalBillRepository defines the interface for external bill persistence
type ExternalBillRepository interface {
	// FindByID finds an external bill by ID. Lookups through the public
	// payment link are not tenant-scoped.
	FindByID(ctx context.Context, id uuid.UUID) (*ExternalBill, error)

	// FindByIDForTenant finds an external bill by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ExternalBill, error)

	// FindAllForTenant lists external bills of a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ExternalBillFilter) ([]ExternalBill, error)

	// CountForTenant counts external bills of a tenant with filtering
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ExternalBillFilter) (int64, error)

	// Save creates or updates an external bill
	Save(ctx context.Context, bill *ExternalBill) error
}
