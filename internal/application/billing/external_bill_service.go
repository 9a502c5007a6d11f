package billing

import (
	"context"
	"time"

	"github.com/villahub/backend/internal/domain/billing"
	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExternalBillService manages one-off bills to non-resident billees
type ExternalBillService struct {
	billRepo  billing.ExternalBillRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewExternalBillService creates a new ExternalBillService
func NewExternalBillService(billRepo billing.ExternalBillRepository, publisher shared.EventPublisher, logger *zap.Logger) *ExternalBillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExternalBillService{
		billRepo:  billRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateExternalBillRequest carries the inputs for issuing an external bill
type CreateExternalBillRequest struct {
	TenantID    uuid.UUID
	TargetName  string
	Phone       string
	Amount      valueobject.Money
	Description string
	DueDate     *time.Time
}

// Create issues a new external bill at status PENDING
func (s *ExternalBillService) Create(ctx context.Context, req CreateExternalBillRequest) (*billing.ExternalBill, error) {
	bill, err := billing.NewExternalBill(req.TenantID, req.TargetName, req.Phone, req.Amount, req.Description, req.DueDate)
	if err != nil {
		return nil, err
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		return nil, err
	}

	s.logger.Info("External bill created",
		zap.String("bill_id", bill.ID.String()),
		zap.String("tenant_id", bill.TenantID.String()),
		zap.String("target", bill.TargetName),
		zap.String("amount", bill.Amount.String()))

	s.publishEvents(ctx, bill)

	return bill, nil
}

// Get loads an external bill for a tenant
func (s *ExternalBillService) Get(ctx context.Context, tenantID, billID uuid.UUID) (*billing.ExternalBill, error) {
	return s.billRepo.FindByIDForTenant(ctx, tenantID, billID)
}

// GetPublic loads an external bill through its public payment link.
// The lookup is not tenant-scoped; the unguessable bill ID is the only
// credential the billee holds.
func (s *ExternalBillService) GetPublic(ctx context.Context, billID uuid.UUID) (*billing.ExternalBill, error) {
	return s.billRepo.FindByID(ctx, billID)
}

// List returns a page of the tenant's external bills
func (s *ExternalBillService) List(ctx context.Context, tenantID uuid.UUID, filter billing.ExternalBillFilter) (*shared.Paginated[billing.ExternalBill], error) {
	bills, err := s.billRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.billRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(bills, total, filter.Page, filter.PageSize)
	return &page, nil
}

// SelfReportPaid records that the billee reported the bill as paid via
// the public link
func (s *ExternalBillService) SelfReportPaid(ctx context.Context, billID uuid.UUID) (*billing.ExternalBill, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}

	if err := bill.SelfReportPaid(); err != nil {
		return nil, err
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		return nil, err
	}

	s.logger.Info("External bill self-reported as paid",
		zap.String("bill_id", bill.ID.String()),
		zap.String("target", bill.TargetName))

	s.publishEvents(ctx, bill)

	return bill, nil
}

// Confirm marks a bill as COMPLETED after an admin verified the payment
func (s *ExternalBillService) Confirm(ctx context.Context, tenantID, billID uuid.UUID) (*billing.ExternalBill, error) {
	bill, err := s.billRepo.FindByIDForTenant(ctx, tenantID, billID)
	if err != nil {
		return nil, err
	}

	if err := bill.Confirm(); err != nil {
		return nil, err
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		return nil, err
	}

	s.logger.Info("External bill confirmed",
		zap.String("bill_id", bill.ID.String()),
		zap.String("target", bill.TargetName),
		zap.String("amount", bill.Amount.String()))

	s.publishEvents(ctx, bill)

	return bill, nil
}

func (s *ExternalBillService) publishEvents(ctx context.Context, bill *billing.ExternalBill) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, bill.GetDomainEvents()...); err != nil {
		s.logger.Warn("Failed to publish external bill events",
			zap.String("bill_id", bill.ID.String()),
			zap.Error(err))
	}
	bill.ClearDomainEvents()
}
