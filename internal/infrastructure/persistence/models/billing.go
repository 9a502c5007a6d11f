package models

import (
	"time"

	"github.com/villahub/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	TenantAggregateModel
	BillingMonth      string               `gorm:"type:varchar(7);not null;index:idx_invoice_tenant_month,priority:2"`
	Memo              string               `gorm:"type:varchar(500)"`
	Type              billing.InvoiceType  `gorm:"type:varchar(20);not null"`
	TotalAmount       decimal.Decimal      `gorm:"type:decimal(18,0);not null"`
	AmountPerResident decimal.Decimal      `gorm:"type:decimal(18,0);not null"`
	Items             billing.InvoiceItems `gorm:"type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		BillingMonth:      m.BillingMonth,
		Memo:              m.Memo,
		Type:              m.Type,
		TotalAmount:       m.TotalAmount,
		AmountPerResident: m.AmountPerResident,
		Items:             m.Items,
	}
	m.PopulateTenantAggregateRoot(&inv.TenantAggregateRoot)
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.BillingMonth = inv.BillingMonth
	m.Memo = inv.Memo
	m.Type = inv.Type
	m.TotalAmount = inv.TotalAmount
	m.AmountPerResident = inv.AmountPerResident
	m.Items = inv.Items
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	TenantAggregateModel
	InvoiceID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	ResidentID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	UnitID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal       `gorm:"type:decimal(18,0);not null"`
	Status      billing.PaymentStatus `gorm:"type:varchar(30);not null;default:'PENDING';index"`
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	p := &billing.Payment{
		InvoiceID:   m.InvoiceID,
		ResidentID:  m.ResidentID,
		UnitID:      m.UnitID,
		Amount:      m.Amount,
		Status:      m.Status,
		CompletedAt: m.CompletedAt,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.InvoiceID = p.InvoiceID
	m.ResidentID = p.ResidentID
	m.UnitID = p.UnitID
	m.Amount = p.Amount
	m.Status = p.Status
	m.CompletedAt = p.CompletedAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// ExternalBillModel is the persistence model for the ExternalBill aggregate root.
type ExternalBillModel struct {
	TenantAggregateModel
	TargetName  string                     `gorm:"type:varchar(100);not null"`
	Phone       string                     `gorm:"type:varchar(30)"`
	Amount      decimal.Decimal            `gorm:"type:decimal(18,0);not null"`
	Description string                     `gorm:"type:varchar(500)"`
	DueDate     *time.Time                 `gorm:"index"`
	Status      billing.ExternalBillStatus `gorm:"type:varchar(30);not null;default:'PENDING';index"`
	ReportedAt  *time.Time
	ConfirmedAt *time.Time
}

// TableName returns the table name for GORM
func (ExternalBillModel) TableName() string {
	return "external_bills"
}

// ToDomain converts the persistence model to a domain ExternalBill entity.
func (m *ExternalBillModel) ToDomain() *billing.ExternalBill {
	b := &billing.ExternalBill{
		TargetName:  m.TargetName,
		Phone:       m.Phone,
		Amount:      m.Amount,
		Description: m.Description,
		DueDate:     m.DueDate,
		Status:      m.Status,
		ReportedAt:  m.ReportedAt,
		ConfirmedAt: m.ConfirmedAt,
	}
	m.PopulateTenantAggregateRoot(&b.TenantAggregateRoot)
	return b
}

// FromDomain populates the persistence model from a domain ExternalBill entity.
func (m *ExternalBillModel) FromDomain(b *billing.ExternalBill) {
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	m.TargetName = b.TargetName
	m.Phone = b.Phone
	m.Amount = b.Amount
	m.Description = b.Description
	m.DueDate = b.DueDate
	m.Status = b.Status
	m.ReportedAt = b.ReportedAt
	m.ConfirmedAt = b.ConfirmedAt
}

// ExternalBillModelFromDomain creates a new persistence model from a domain ExternalBill.
func ExternalBillModelFromDomain(b *billing.ExternalBill) *ExternalBillModel {
	m := &ExternalBillModel{}
	m.FromDomain(b)
	return m
}
