package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/villahub/backend/internal/domain/billing"
	"github.com/villahub/backend/internal/domain/community"
	"github.com/villahub/backend/internal/domain/shared"
)

// In-memory fakes backing the handler tests. Handlers are exercised
// against real application services wired over these.

type fakeTenantRepo struct {
	tenants map[uuid.UUID]*community.Tenant
}

func newFakeTenantRepo(tenants ...*community.Tenant) *fakeTenantRepo {
	r := &fakeTenantRepo{tenants: make(map[uuid.UUID]*community.Tenant)}
	for _, t := range tenants {
		r.tenants[t.ID] = t
	}
	return r
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
		if t.AutoBillingDay != nil && *t.AutoBillingDay == day {
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

type fakeUnitRepo struct {
	units map[uuid.UUID]*community.Unit
}

func newFakeUnitRepo() *fakeUnitRepo {
	return &fakeUnitRepo{units: make(map[uuid.UUID]*community.Unit)}
}

func (r *fakeUnitRepo) FindByID(_ context.Context, id uuid.UUID) (*community.Unit, error) {
	u, ok := r.units[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *fakeUnitRepo) FindByRoomNumber(_ context.Context, tenantID uuid.UUID, roomNumber string) (*community.Unit, error) {
	for _, u := range r.units {
		if u.TenantID == tenantID && u.RoomNumber == roomNumber {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUnitRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID) ([]community.Unit, error) {
	var out []community.Unit
	for _, u := range r.units {
		if u.TenantID == tenantID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUnitRepo) Save(_ context.Context, unit *community.Unit) error {
	r.units[unit.ID] = unit
	return nil
}

type fakeResidentRepo struct {
	residents map[uuid.UUID]*community.Resident
	units     *fakeUnitRepo
}

func newFakeResidentRepo(units *fakeUnitRepo) *fakeResidentRepo {
	return &fakeResidentRepo{
		residents: make(map[uuid.UUID]*community.Resident),
		units:     units,
	}
}

func (r *fakeResidentRepo) FindByID(_ context.Context, id uuid.UUID) (*community.Resident, error) {
	res, ok := r.residents[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return res, nil
}

func (r *fakeResidentRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID) ([]community.Resident, error) {
	var out []community.Resident
	for _, res := range r.residents {
		if res.TenantID == tenantID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *fakeResidentRepo) ListResidents(ctx context.Context, tenantID uuid.UUID) ([]community.ResidentInfo, error) {
	var out []community.ResidentInfo
	for _, res := range r.residents {
		if res.TenantID != tenantID {
			continue
		}
		info := community.ResidentInfo{
			ResidentID:   res.ID,
			ResidentName: res.Name,
			UnitID:       res.UnitID,
		}
		if unit, err := r.units.FindByID(ctx, res.UnitID); err == nil {
			info.RoomNumber = unit.RoomNumber
		}
		out = append(out, info)
	}
	return out, nil
}

func (r *fakeResidentRepo) CountForTenant(_ context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	for _, res := range r.residents {
		if res.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *fakeResidentRepo) Save(_ context.Context, resident *community.Resident) error {
	r.residents[resident.ID] = resident
	return nil
}

func (r *fakeResidentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.residents[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.residents, id)
	return nil
}

type fakeInvoiceRepo struct {
	invoices     map[uuid.UUID]*billing.Invoice
	payments     map[uuid.UUID][]billing.Payment
	hasCompleted map[uuid.UUID]bool
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices:     make(map[uuid.UUID]*billing.Invoice),
		payments:     make(map[uuid.UUID][]billing.Payment),
		hasCompleted: make(map[uuid.UUID]bool),
	}
}

func (r *fakeInvoiceRepo) CreateWithPayments(_ context.Context, invoice *billing.Invoice, payments []billing.Payment) error {
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

func (r *fakeInvoiceRepo) UpdateGuarded(_ context.Context, tenantID, id uuid.UUID, changes billing.InvoiceChanges) (*billing.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	if r.hasCompleted[id] {
		return nil, shared.ErrInvariantViolation
	}
	if err := inv.ApplyChanges(changes); err != nil {
		return nil, err
	}
	return inv, nil
}

type fakePaymentRepo struct {
	payments    map[uuid.UUID]*billing.Payment
	forInvoice  map[uuid.UUID][]billing.PaymentForInvoice
	forResident map[uuid.UUID][]billing.PaymentForResident
}

func newFakePaymentRepo(payments ...*billing.Payment) *fakePaymentRepo {
	r := &fakePaymentRepo{
		payments:    make(map[uuid.UUID]*billing.Payment),
		forInvoice:  make(map[uuid.UUID][]billing.PaymentForInvoice),
		forResident: make(map[uuid.UUID][]billing.PaymentForResident),
	}
	for _, p := range payments {
		r.payments[p.ID] = p
	}
	return r
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
	return r.forInvoice[invoiceID], nil
}

func (r *fakePaymentRepo) ListForResident(_ context.Context, residentID uuid.UUID) ([]billing.PaymentForResident, error) {
	return r.forResident[residentID], nil
}

func (r *fakePaymentRepo) SumUnpaidForResident(_ context.Context, residentID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.payments {
		if p.ResidentID == residentID && p.Status == billing.PaymentStatusPending {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (r *fakePaymentRepo) HasCompletedForInvoice(_ context.Context, invoiceID uuid.UUID) (bool, error) {
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID && p.Status == billing.PaymentStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

type fakeBillRepo struct {
	bills map[uuid.UUID]*billing.ExternalBill
}

func newFakeBillRepo(bills ...*billing.ExternalBill) *fakeBillRepo {
	r := &fakeBillRepo{bills: make(map[uuid.UUID]*billing.ExternalBill)}
	for _, b := range bills {
		r.bills[b.ID] = b
	}
	return r
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

type fakePublisher struct {
	published []shared.DomainEvent
}

func (p *fakePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.published = append(p.published, events...)
	return nil
}
