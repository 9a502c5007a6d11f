package models

import (
	"time"

	"github.com/villahub/backend/internal/domain/community"
	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenantModel is the persistence model for the Tenant aggregate root.
type TenantModel struct {
	AggregateModel
	Name                 string           `gorm:"type:varchar(100);not null"`
	Address              string           `gorm:"type:varchar(300)"`
	AutoBillingDay       *int             `gorm:"index"`
	DefaultMonthlyAmount *decimal.Decimal `gorm:"type:decimal(18,0)"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity.
func (m *TenantModel) ToDomain() *community.Tenant {
	t := &community.Tenant{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Name:           m.Name,
		Address:        m.Address,
		AutoBillingDay: m.AutoBillingDay,
	}
	if m.DefaultMonthlyAmount != nil {
		amount := valueobject.NewMoneyKRW(m.DefaultMonthlyAmount.IntPart())
		t.DefaultMonthlyAmount = &amount
	}
	return t
}

// FromDomain populates the persistence model from a domain Tenant entity.
func (m *TenantModel) FromDomain(t *community.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Name = t.Name
	m.Address = t.Address
	m.AutoBillingDay = t.AutoBillingDay
	if t.DefaultMonthlyAmount != nil {
		amount := t.DefaultMonthlyAmount.Amount()
		m.DefaultMonthlyAmount = &amount
	} else {
		m.DefaultMonthlyAmount = nil
	}
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant.
func TenantModelFromDomain(t *community.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}

// UnitModel is the persistence model for the Unit aggregate root.
// Units are never deleted so billing history stays attached to them.
type UnitModel struct {
	TenantAggregateModel
	RoomNumber string `gorm:"type:varchar(20);not null;uniqueIndex:idx_unit_tenant_room,priority:2"`
}

// TableName returns the table name for GORM
func (UnitModel) TableName() string {
	return "units"
}

// ToDomain converts the persistence model to a domain Unit entity.
func (m *UnitModel) ToDomain() *community.Unit {
	u := &community.Unit{
		RoomNumber: m.RoomNumber,
	}
	m.PopulateTenantAggregateRoot(&u.TenantAggregateRoot)
	return u
}

// FromDomain populates the persistence model from a domain Unit entity.
func (m *UnitModel) FromDomain(u *community.Unit) {
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	m.RoomNumber = u.RoomNumber
}

// UnitModelFromDomain creates a new persistence model from a domain Unit.
func UnitModelFromDomain(u *community.Unit) *UnitModel {
	m := &UnitModel{}
	m.FromDomain(u)
	return m
}

// ResidentModel is the persistence model for the Resident aggregate root.
// The row is removed on move-out.
type ResidentModel struct {
	TenantAggregateModel
	UnitID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(50);not null"`
	Phone     string    `gorm:"type:varchar(30)"`
	MovedInAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ResidentModel) TableName() string {
	return "residents"
}

// ToDomain converts the persistence model to a domain Resident entity.
func (m *ResidentModel) ToDomain() *community.Resident {
	r := &community.Resident{
		UnitID:    m.UnitID,
		Name:      m.Name,
		Phone:     m.Phone,
		MovedInAt: m.MovedInAt,
	}
	m.PopulateTenantAggregateRoot(&r.TenantAggregateRoot)
	return r
}

// FromDomain populates the persistence model from a domain Resident entity.
func (m *ResidentModel) FromDomain(r *community.Resident) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.UnitID = r.UnitID
	m.Name = r.Name
	m.Phone = r.Phone
	m.MovedInAt = r.MovedInAt
}

// ResidentModelFromDomain creates a new persistence model from a domain Resident.
func ResidentModelFromDomain(r *community.Resident) *ResidentModel {
	m := &ResidentModel{}
	m.FromDomain(r)
	return m
}
