package community

import (
	"context"

	"github.com/villahub/backend/internal/domain/community"
	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantService manages villa and apartment building registrations
type TenantService struct {
	tenantRepo community.TenantRepository
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewTenantService creates a new TenantService
func NewTenantService(tenantRepo community.TenantRepository, publisher shared.EventPublisher, logger *zap.Logger) *TenantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{
		tenantRepo: tenantRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateTenantRequest carries the inputs for registering a tenant
type CreateTenantRequest struct {
	Name    string
	Address string
}

// CreateTenant registers a new villa or apartment building
func (s *TenantService) CreateTenant(ctx context.Context, req CreateTenantRequest) (*community.Tenant, error) {
	tenant, err := community.NewTenant(req.Name, req.Address)
	if err != nil {
		return nil, err
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("name", tenant.Name))

	s.publishEvents(ctx, tenant)

	return tenant, nil
}

// GetTenant loads a tenant by ID
func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*community.Tenant, error) {
	return s.tenantRepo.FindByID(ctx, id)
}

// ListTenants returns a page of tenants
func (s *TenantService) ListTenants(ctx context.Context, filter shared.Filter) (*shared.Paginated[community.Tenant], error) {
	tenants, err := s.tenantRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.tenantRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(tenants, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateTenantRequest carries optional tenant field changes
type UpdateTenantRequest struct {
	Name    *string
	Address *string
}

// UpdateTenant applies name and address changes
func (s *TenantService) UpdateTenant(ctx context.Context, id uuid.UUID, req UpdateTenantRequest) (*community.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := tenant.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Address != nil {
		tenant.SetAddress(*req.Address)
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

// ConfigureAutoBillingRequest carries the auto-billing settings
type ConfigureAutoBillingRequest struct {
	BillingDay    int
	DefaultAmount valueobject.Money
}

// ConfigureAutoBilling enables monthly auto-billing for a tenant
func (s *TenantService) ConfigureAutoBilling(ctx context.Context, tenantID uuid.UUID, req ConfigureAutoBillingRequest) (*community.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := tenant.ConfigureAutoBilling(req.BillingDay, req.DefaultAmount); err != nil {
		return nil, err
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	s.logger.Info("Auto-billing configured",
		zap.String("tenant_id", tenant.ID.String()),
		zap.Int("billing_day", req.BillingDay),
		zap.String("default_amount", req.DefaultAmount.String()))

	s.publishEvents(ctx, tenant)

	return tenant, nil
}

// DisableAutoBilling turns off monthly auto-billing for a tenant
func (s *TenantService) DisableAutoBilling(ctx context.Context, tenantID uuid.UUID) (*community.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	tenant.DisableAutoBilling()

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	s.logger.Info("Auto-billing disabled",
		zap.String("tenant_id", tenant.ID.String()))

	return tenant, nil
}

func (s *TenantService) publishEvents(ctx context.Context, tenant *community.Tenant) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, tenant.GetDomainEvents()...); err != nil {
		s.logger.Warn("Failed to publish tenant events",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Error(err))
	}
	tenant.ClearDomainEvents()
}
