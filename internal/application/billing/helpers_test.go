package billing

import (
	"context"
	"time"

	"github.com/villahub/backend/internal/domain/billing"
	"github.com/villahub/backend/internal/domain/community"
	"github.com/villahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory fakes for the service tests.

type fakeInvoiceRepo struct {
	invoices     map[uuid.UUID]*billing.Invoice
	payments     map[uuid.UUID][]billing.Payment
	hasCompleted map[uuid.UUID]bool
	failCreate   error
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices:     make(map[uuid.UUID]*billing.Invoice),
		payments:     make(map[uuid.UUID][]billing.Payment),
		hasCompleted: make(map[uuid.UUID]bool),
	}
}

func (r *fakeInvoiceRepo) CreateWithPayments(_ context.Context, invoice *billing.Invoice, payments []billing.Payment) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.invoices[invoice.ID] = invoice
	r.payments[invoice.ID] = payments
	return nil
}

func (r *fakeInvoiceRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

func (r *fakeInvoiceRepo) FindWithPayments(ctx context.Context, tenantID, id uuid.UUID) (*billing.InvoiceWithPayments, error) {
	inv, err := r.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return &billing.InvoiceWithPayments{Invoice: inv, Payments: r.payments[id]}, nil
}

func (r *fakeInvoiceRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ billing.InvoiceFilter) ([]billing.Invoice, error) {
	var out []billing.Invoice
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) (int64, error) {
	invoices, _ := r.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(invoices)), nil
}

func (r *fakeInvoiceRepo) ExistsForMonth(_ context.Context, tenantID uuid.UUID, billingMonth string) (bool, error) {
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && inv.BillingMonth == billingMonth {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInvoiceRepo) UpdateGuarded(ctx context.Context, tenantID, id uuid.UUID, changes billing.InvoiceChanges) (*billing.Invoice, error) {
	inv, err := r.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if r.hasCompleted[id] {
		return nil, shared.NewDomainError("INVARIANT_VIOLATION", "Cannot edit invoice: at least one unit has already paid")
	}
	if err := inv.ApplyChanges(changes); err != nil {
		return nil, err
	}
	return inv, nil
}

type fakeTenantRepo struct {
	tenants map[uuid.UUID]*community.Tenant
}

func newFakeTenantRepo(tenants ...*community.Tenant) *fakeTenantRepo {
	repo := &fakeTenantRepo{tenants: make(map[uuid.UUID]*community.Tenant)}
	for _, t := range tenants {
		repo.tenants[t.ID] = t
	}
	return repo
}

func (r *fakeTenantRepo) FindByID(_ context.Context, id uuid.UUID) (*community.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return t, nil
}

func (r *fakeTenantRepo) FindAll(_ context.Context, _ shared.Filter) ([]community.Tenant, error) {
	var out []community.Tenant
	for _, t := range r.tenants {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTenantRepo) FindByAutoBillingDay(_ context.Context, day int) ([]community.Tenant, error) {
	var out []community.Tenant
	for _, t := range r.tenants {
		if t.ShouldBillOn(day) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTenantRepo) Save(_ context.Context, tenant *community.Tenant) error {
	r.tenants[tenant.ID] = tenant
	return nil
}

func (r *fakeTenantRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.tenants)), nil
}

type fakeDirectory struct {
	residents map[uuid.UUID][]community.ResidentInfo
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{residents: make(map[uuid.UUID][]community.ResidentInfo)}
}

func (d *fakeDirectory) addResidents(tenantID uuid.UUID, n int) []community.ResidentInfo {
	infos := make([]community.ResidentInfo, n)
	for i := range n {
		infos[i] = community.ResidentInfo{
			ResidentID:   uuid.New(),
			ResidentName: "Resident",
			UnitID:       uuid.New(),
			RoomNumber:   "101",
		}
	}
	d.residents[tenantID] = infos
	return infos
}

func (d *fakeDirectory) ListResidents(_ context.Context, tenantID uuid.UUID) ([]community.ResidentInfo, error) {
	return d.residents[tenantID], nil
}

type fakePaymentRepo struct {
	payments    map[uuid.UUID]*billing.Payment
	unpaidCalls int
}

func newFakePaymentRepo(payments ...*billing.Payment) *fakePaymentRepo {
	repo := &fakePaymentRepo{payments: make(map[uuid.UUID]*billing.Payment)}
	for _, p := range payments {
		repo.payments[p.ID] = p
	}
	return repo
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakePaymentRepo) Save(_ context.Context, payment *billing.Payment) error {
	r.payments[payment.ID] = payment
	return nil
}

func (r *fakePaymentRepo) ListForInvoice(_ context.Context, invoiceID uuid.UUID) ([]billing.PaymentForInvoice, error) {
	var out []billing.PaymentForInvoice
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, billing.PaymentForInvoice{Payment: *p, ResidentName: "Resident", RoomNumber: "101"})
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) ListForResident(_ context.Context, residentID uuid.UUID) ([]billing.PaymentForResident, error) {
	var out []billing.PaymentForResident
	for _, p := range r.payments {
		if p.ResidentID == residentID {
			out = append(out, billing.PaymentForResident{Payment: *p, BillingMonth: "2026-08", TenantName: "Sunrise Villa"})
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) SumUnpaidForResident(_ context.Context, residentID uuid.UUID) (decimal.Decimal, error) {
	r.unpaidCalls++
	sum := decimal.Zero
	for _, p := range r.payments {
		if p.ResidentID == residentID && p.Status == billing.PaymentStatusPending {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (r *fakePaymentRepo) HasCompletedForInvoice(_ context.Context, invoiceID uuid.UUID) (bool, error) {
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID && p.IsCompleted() {
			return true, nil
		}
	}
	return false, nil
}

type fakeBillRepo struct {
	bills map[uuid.UUID]*billing.ExternalBill
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{bills: make(map[uuid.UUID]*billing.ExternalBill)}
}

func (r *fakeBillRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.ExternalBill, error) {
	b, ok := r.bills[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return b, nil
}

func (r *fakeBillRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*billing.ExternalBill, error) {
	b, ok := r.bills[id]
	if !ok || b.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return b, nil
}

func (r *fakeBillRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ billing.ExternalBillFilter) ([]billing.ExternalBill, error) {
	var out []billing.ExternalBill
	for _, b := range r.bills {
		if b.TenantID == tenantID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBillRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.ExternalBillFilter) (int64, error) {
	bills, _ := r.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(bills)), nil
}

func (r *fakeBillRepo) Save(_ context.Context, bill *billing.ExternalBill) error {
	r.bills[bill.ID] = bill
	return nil
}

type fakeDedup struct {
	seen map[string]bool
}

func newFakeDedup() *fakeDedup {
	return &fakeDedup{seen: make(map[string]bool)}
}

func (d *fakeDedup) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

func (d *fakeDedup) IsProcessed(_ context.Context, key string) (bool, error) {
	return d.seen[key], nil
}

func (d *fakeDedup) Release(_ context.Context, key string) error {
	delete(d.seen, key)
	return nil
}

func (d *fakeDedup) Close() error { return nil }

type fakeCache struct {
	totals      map[uuid.UUID]decimal.Decimal
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{totals: make(map[uuid.UUID]decimal.Decimal)}
}

func (c *fakeCache) Get(_ context.Context, residentID uuid.UUID) (decimal.Decimal, bool, error) {
	total, ok := c.totals[residentID]
	return total, ok, nil
}

func (c *fakeCache) Set(_ context.Context, residentID uuid.UUID, total decimal.Decimal) error {
	c.totals[residentID] = total
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, residentID uuid.UUID) error {
	c.invalidated++
	delete(c.totals, residentID)
	return nil
}

type fakePublisher struct {
	events []shared.DomainEvent
}

func (p *fakePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}
