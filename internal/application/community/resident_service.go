package community

import (
	"context"
	"errors"

	"github.com/villahub/backend/internal/domain/community"
	"github.com/villahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResidentService manages resident memberships and the units they occupy
type ResidentService struct {
	residentRepo community.ResidentRepository
	unitRepo     community.UnitRepository
	tenantRepo   community.TenantRepository
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewResidentService creates a new ResidentService
func NewResidentService(
	residentRepo community.ResidentRepository,
	unitRepo community.UnitRepository,
	tenantRepo community.TenantRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ResidentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResidentService{
		residentRepo: residentRepo,
		unitRepo:     unitRepo,
		tenantRepo:   tenantRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// RegisterResidentRequest carries the inputs for a move-in
type RegisterResidentRequest struct {
	TenantID   uuid.UUID
	RoomNumber string
	Name       string
	Phone      string
}

// RegisterResident records a move-in. The unit is looked up by room
// number and created on first occupancy; units persist across move-outs
// so billing history stays attached to them.
func (s *ResidentService) RegisterResident(ctx context.Context, req RegisterResidentRequest) (*community.Resident, error) {
	if _, err := s.tenantRepo.FindByID(ctx, req.TenantID); err != nil {
		return nil, err
	}

	unit, err := s.unitRepo.FindByRoomNumber(ctx, req.TenantID, req.RoomNumber)
	if errors.Is(err, shared.ErrNotFound) {
		unit, err = community.NewUnit(req.TenantID, req.RoomNumber)
		if err != nil {
			return nil, err
		}
		if err := s.unitRepo.Save(ctx, unit); err != nil {
			return nil, err
		}
		s.logger.Info("Unit created",
			zap.String("unit_id", unit.ID.String()),
			zap.String("tenant_id", req.TenantID.String()),
			zap.String("room_number", unit.RoomNumber))
	} else if err != nil {
		return nil, err
	}

	resident, err := community.NewResident(req.TenantID, unit.ID, req.Name, req.Phone)
	if err != nil {
		return nil, err
	}

	if err := s.residentRepo.Save(ctx, resident); err != nil {
		return nil, err
	}

	s.logger.Info("Resident moved in",
		zap.String("resident_id", resident.ID.String()),
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("room_number", unit.RoomNumber),
		zap.String("name", resident.Name))

	s.publishEvents(ctx, resident)

	return resident, nil
}

// GetResident loads a resident scoped to a tenant
func (s *ResidentService) GetResident(ctx context.Context, tenantID, residentID uuid.UUID) (*community.Resident, error) {
	resident, err := s.residentRepo.FindByID(ctx, residentID)
	if err != nil {
		return nil, err
	}
	if resident.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return resident, nil
}

// ListResidents returns every resident of a tenant with the unit they occupy
func (s *ResidentService) ListResidents(ctx context.Context, tenantID uuid.UUID) ([]community.ResidentInfo, error) {
	return s.residentRepo.ListResidents(ctx, tenantID)
}

// ListUnits returns every unit of a tenant, occupied or not
func (s *ResidentService) ListUnits(ctx context.Context, tenantID uuid.UUID) ([]community.Unit, error) {
	return s.unitRepo.FindAllForTenant(ctx, tenantID)
}

// UpdateResidentRequest carries optional resident field changes
type UpdateResidentRequest struct {
	Name  *string
	Phone *string
}

// UpdateResident applies name and phone changes
func (s *ResidentService) UpdateResident(ctx context.Context, tenantID, residentID uuid.UUID, req UpdateResidentRequest) (*community.Resident, error) {
	resident, err := s.GetResident(ctx, tenantID, residentID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := resident.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil {
		resident.SetPhone(*req.Phone)
	}

	if err := s.residentRepo.Save(ctx, resident); err != nil {
		return nil, err
	}

	return resident, nil
}

// MoveOut removes a resident membership. The unit and all billing rows
// that reference the resident ID are kept.
func (s *ResidentService) MoveOut(ctx context.Context, tenantID, residentID uuid.UUID) error {
	resident, err := s.GetResident(ctx, tenantID, residentID)
	if err != nil {
		return err
	}

	if err := s.residentRepo.Delete(ctx, resident.ID); err != nil {
		return err
	}

	s.logger.Info("Resident moved out",
		zap.String("resident_id", resident.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("name", resident.Name))

	resident.AddDomainEvent(community.NewResidentMovedOutEvent(resident))
	s.publishEvents(ctx, resident)

	return nil
}

func (s *ResidentService) publishEvents(ctx context.Context, resident *community.Resident) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, resident.GetDomainEvents()...); err != nil {
		s.logger.Warn("Failed to publish resident events",
			zap.String("resident_id", resident.ID.String()),
			zap.Error(err))
	}
	resident.ClearDomainEvents()
}
