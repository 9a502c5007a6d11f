package billing

import (
	"context"

	"github.com/villahub/backend/internal/domain/billing"
	"github.com/villahub/backend/internal/domain/community"
	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService orchestrates invoice creation: resolve the resident set,
// allocate the cost, and persist the invoice with one payment per resident
// as a single atomic unit of work.
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	tenantRepo  community.TenantRepository
	directory   community.ResidentDirectory
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	tenantRepo community.TenantRepository,
	directory community.ResidentDirectory,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		tenantRepo:  tenantRepo,
		directory:   directory,
		publisher:   publisher,
		logger:      logger,
	}
}

// ItemInput is one breakdown line of a VARIABLE invoice request
type ItemInput struct {
	Label  string
	Amount valueobject.Money
}

// OverrideInput assigns one unit an absolute amount or a ratio of the total
type OverrideInput struct {
	UnitID uuid.UUID
	Amount *valueobject.Money
	Ratio  *string // decimal string, 0.0-1.0
}

// CreateInvoiceRequest carries the inputs for invoice creation.
// A FIXED invoice takes exactly one of PerUnitAmount (total = fee x unit
// count) or TotalAmount (split evenly); a VARIABLE invoice takes Items
// and optional Overrides.
type CreateInvoiceRequest struct {
	TenantID      uuid.UUID
	BillingMonth  string
	Type          billing.InvoiceType
	Memo          string
	PerUnitAmount *valueobject.Money
	TotalAmount   *valueobject.Money
	Items         []ItemInput
	Overrides     []OverrideInput
}

// CreateInvoice builds and persists an invoice with its payments.
// Either the invoice and every payment exist afterwards, or none do.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*billing.InvoiceWithPayments, error) {
	if !req.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVOICE_TYPE", "Invoice type must be FIXED or VARIABLE")
	}
	if err := billing.ValidateBillingMonth(req.BillingMonth); err != nil {
		return nil, err
	}

	if _, err := s.tenantRepo.FindByID(ctx, req.TenantID); err != nil {
		return nil, err
	}

	residents, err := s.directory.ListResidents(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if len(residents) == 0 {
		return nil, shared.NewDomainError("NOT_FOUND", "No residents registered for this tenant")
	}

	participants := toParticipants(residents)
	overrides, err := toOverrides(req.Overrides)
	if err != nil {
		return nil, err
	}

	var invoice *billing.Invoice
	var allocations []billing.Allocation

	switch req.Type {
	case billing.InvoiceTypeFixed:
		invoice, allocations, err = s.buildFixed(req, participants, overrides)
	case billing.InvoiceTypeVariable:
		invoice, allocations, err = s.buildVariable(req, participants, overrides)
	}
	if err != nil {
		return nil, err
	}

	// A second invoice for the same month is allowed (admin override) but
	// operators want to see it.
	if exists, dupErr := s.invoiceRepo.ExistsForMonth(ctx, req.TenantID, req.BillingMonth); dupErr == nil && exists {
		s.logger.Warn("Duplicate invoice for billing month",
			zap.String("tenant_id", req.TenantID.String()),
			zap.String("billing_month", req.BillingMonth))
	}

	payments := make([]billing.Payment, 0, len(allocations))
	for _, alloc := range allocations {
		p, pErr := billing.NewPayment(req.TenantID, invoice.ID, alloc.Participant.ResidentID, alloc.Participant.UnitID, alloc.Amount)
		if pErr != nil {
			return nil, pErr
		}
		payments = append(payments, *p)
	}

	if err := s.invoiceRepo.CreateWithPayments(ctx, invoice, payments); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("billing_month", req.BillingMonth),
		zap.String("type", invoice.Type.String()),
		zap.String("total_amount", invoice.TotalAmount.String()),
		zap.Int("payment_count", len(payments)))

	s.publishEvents(ctx, invoice)

	return &billing.InvoiceWithPayments{Invoice: invoice, Payments: payments}, nil
}

func (s *InvoiceService) buildFixed(req CreateInvoiceRequest, participants []billing.Participant, overrides []billing.Override) (*billing.Invoice, []billing.Allocation, error) {
	if (req.PerUnitAmount == nil) == (req.TotalAmount == nil) {
		return nil, nil, shared.NewDomainError("INVALID_AMOUNT", "A FIXED invoice requires exactly one of per-unit amount or total amount")
	}
	if len(req.Items) > 0 {
		return nil, nil, shared.NewDomainError("INVALID_ITEMS", "A FIXED invoice cannot carry an item breakdown")
	}

	if req.PerUnitAmount != nil {
		if len(overrides) > 0 {
			return nil, nil, shared.NewDomainError("INVALID_OVERRIDE", "Per-unit FIXED invoices do not support overrides")
		}
		allocations, err := billing.AllocateFixed(*req.PerUnitAmount, participants)
		if err != nil {
			return nil, nil, err
		}
		invoice, err := billing.NewFixedInvoice(req.TenantID, req.BillingMonth, req.Memo, *req.PerUnitAmount, len(participants))
		if err != nil {
			return nil, nil, err
		}
		return invoice, allocations, nil
	}

	allocations, err := billing.AllocateTotal(*req.TotalAmount, participants, overrides)
	if err != nil {
		return nil, nil, err
	}
	invoice, err := billing.NewFixedInvoiceFromTotal(req.TenantID, req.BillingMonth, req.Memo, *req.TotalAmount, len(participants))
	if err != nil {
		return nil, nil, err
	}
	return invoice, allocations, nil
}

func (s *InvoiceService) buildVariable(req CreateInvoiceRequest, participants []billing.Participant, overrides []billing.Override) (*billing.Invoice, []billing.Allocation, error) {
	if len(req.Items) == 0 {
		return nil, nil, shared.NewDomainError("INVALID_ITEMS", "A VARIABLE invoice requires at least one item")
	}
	if req.PerUnitAmount != nil || req.TotalAmount != nil {
		return nil, nil, shared.NewDomainError("INVALID_AMOUNT", "A VARIABLE invoice derives its total from the item breakdown")
	}

	items := make(billing.InvoiceItems, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, billing.InvoiceItem{Label: item.Label, Amount: item.Amount.Amount()})
	}

	invoice, err := billing.NewVariableInvoice(req.TenantID, req.BillingMonth, req.Memo, items, len(participants))
	if err != nil {
		return nil, nil, err
	}

	allocations, err := billing.AllocateTotal(invoice.GetTotalAmountMoney(), participants, overrides)
	if err != nil {
		return nil, nil, err
	}
	return invoice, allocations, nil
}

// GetInvoice loads an invoice together with its payment rows
func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*billing.InvoiceWithPayments, error) {
	return s.invoiceRepo.FindWithPayments(ctx, tenantID, invoiceID)
}

// ListInvoices returns a page of the tenant's invoices
func (s *InvoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) (*shared.Paginated[billing.Invoice], error) {
	invoices, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(invoices, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateInvoiceRequest carries the mutable invoice fields; nil fields are
// left untouched
type UpdateInvoiceRequest struct {
	BillingMonth *string
	Memo         *string
	Type         *billing.InvoiceType
	TotalAmount  *valueobject.Money
	Items        []ItemInput
}

// UpdateInvoice applies field changes to an invoice. The update is
// rejected with an invariant violation when any of the invoice's payments
// is already COMPLETED; the stored invoice is left unchanged in that case.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*billing.Invoice, error) {
	changes := billing.InvoiceChanges{
		BillingMonth: req.BillingMonth,
		Memo:         req.Memo,
		Type:         req.Type,
		TotalAmount:  req.TotalAmount,
	}
	if req.Items != nil {
		items := make(billing.InvoiceItems, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, billing.InvoiceItem{Label: item.Label, Amount: item.Amount.Amount()})
		}
		changes.Items = &items
	}

	invoice, err := s.invoiceRepo.UpdateGuarded(ctx, tenantID, invoiceID, changes)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice updated",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("tenant_id", tenantID.String()))

	s.publishEvents(ctx, invoice)

	return invoice, nil
}

func (s *InvoiceService) publishEvents(ctx context.Context, invoice *billing.Invoice) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, invoice.GetDomainEvents()...); err != nil {
		s.logger.Warn("Failed to publish invoice events",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
	}
	invoice.ClearDomainEvents()
}

func toParticipants(residents []community.ResidentInfo) []billing.Participant {
	participants := make([]billing.Participant, len(residents))
	for i, r := range residents {
		participants[i] = billing.Participant{
			ResidentID:   r.ResidentID,
			ResidentName: r.ResidentName,
			UnitID:       r.UnitID,
			RoomNumber:   r.RoomNumber,
		}
	}
	return participants
}

func toOverrides(inputs []OverrideInput) ([]billing.Override, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	overrides := make([]billing.Override, 0, len(inputs))
	for _, in := range inputs {
		ov := billing.Override{UnitID: in.UnitID, Amount: in.Amount}
		if in.Ratio != nil {
			ratio, err := decimal.NewFromString(*in.Ratio)
			if err != nil {
				return nil, shared.NewDomainError("INVALID_OVERRIDE", "Override ratio must be a decimal between 0.0 and 1.0")
			}
			ov.Ratio = &ratio
		}
		overrides = append(overrides, ov)
	}
	return overrides, nil
}
