package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/villahub/backend/internal/domain/billing"
	"github.com/villahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// callbackDedupTTL bounds how long a gateway transaction ID blocks
// redelivered callbacks.
const callbackDedupTTL = 24 * time.Hour

// UnpaidTotalCache caches per-resident unpaid totals for the dashboard.
// Entries are invalidated whenever one of the resident's payments moves.
type UnpaidTotalCache interface {
	Get(ctx context.Context, residentID uuid.UUID) (decimal.Decimal, bool, error)
	Set(ctx context.Context, residentID uuid.UUID, total decimal.Decimal) error
	Invalidate(ctx context.Context, residentID uuid.UUID) error
}

// PaymentService owns the payment lifecycle and the ledger's read views
type PaymentService struct {
	paymentRepo billing.PaymentRepository
	dedup       shared.IdempotencyStore
	cache       UnpaidTotalCache
	publisher   shared.EventPublisher
	logger      *zap.Logger
	dedupTTL    time.Duration
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	dedup shared.IdempotencyStore,
	cache UnpaidTotalCache,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		dedup:       dedup,
		cache:       cache,
		publisher:   publisher,
		logger:      logger,
		dedupTTL:    callbackDedupTTL,
	}
}

// SetCallbackDedupTTL overrides the dedup window for gateway callbacks
func (s *PaymentService) SetCallbackDedupTTL(ttl time.Duration) {
	if ttl > 0 {
		s.dedupTTL = ttl
	}
}

// UpdateStatus moves a payment to a new status, enforcing the forward
// transition table
func (s *PaymentService) UpdateStatus(ctx context.Context, paymentID uuid.UUID, status billing.PaymentStatus) (*billing.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if err := payment.UpdateStatus(status); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("Payment status updated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_id", payment.InvoiceID.String()),
		zap.String("status", payment.Status.String()))

	s.afterStatusChange(ctx, payment)

	return payment, nil
}

// GatewayCallbackRequest is the payload the payment gateway posts on a
// successful charge
type GatewayCallbackRequest struct {
	PaymentID     uuid.UUID
	TransactionID string
}

// HandleGatewayCallback completes a payment on a successful gateway
// charge. Redelivered callbacks with the same transaction ID are
// acknowledged without touching the ledger.
func (s *PaymentService) HandleGatewayCallback(ctx context.Context, req GatewayCallbackRequest) error {
	if req.TransactionID == "" {
		return shared.NewDomainError("INVALID_INPUT", "Gateway transaction ID cannot be empty")
	}

	dedupKey := fmt.Sprintf("pg-callback:%s", req.TransactionID)
	marked := false
	if s.dedup != nil {
		fresh, err := s.dedup.MarkProcessed(ctx, dedupKey, s.dedupTTL)
		if err != nil {
			s.logger.Warn("Callback dedup check failed, continuing",
				zap.String("transaction_id", req.TransactionID),
				zap.Error(err))
		} else if !fresh {
			s.logger.Info("Gateway callback already processed",
				zap.String("transaction_id", req.TransactionID),
				zap.String("payment_id", req.PaymentID.String()))
			return nil
		} else {
			marked = true
		}
	}

	payment, err := s.paymentRepo.FindByID(ctx, req.PaymentID)
	if err != nil {
		s.releaseCallbackKey(ctx, marked, dedupKey)
		return err
	}

	if payment.IsCompleted() {
		s.logger.Info("Payment already completed",
			zap.String("payment_id", payment.ID.String()))
		return nil
	}

	if err := payment.Complete(); err != nil {
		s.releaseCallbackKey(ctx, marked, dedupKey)
		return err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		s.releaseCallbackKey(ctx, marked, dedupKey)
		return err
	}

	s.logger.Info("Payment completed via gateway callback",
		zap.String("payment_id", payment.ID.String()),
		zap.String("transaction_id", req.TransactionID),
		zap.String("amount", payment.Amount.String()))

	s.afterStatusChange(ctx, payment)

	return nil
}

// releaseCallbackKey removes the dedup key after a failed callback so the
// gateway's retry is processed instead of swallowed
func (s *PaymentService) releaseCallbackKey(ctx context.Context, marked bool, dedupKey string) {
	if !marked {
		return
	}
	if err := s.dedup.Release(ctx, dedupKey); err != nil {
		s.logger.Warn("Failed to release callback dedup key",
			zap.String("dedup_key", dedupKey),
			zap.Error(err))
	}
}

// ListForInvoice returns the payments of one invoice joined with resident
// name and room number, oldest first
func (s *PaymentService) ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.PaymentForInvoice, error) {
	return s.paymentRepo.ListForInvoice(ctx, invoiceID)
}

// ListForResident returns a resident's payments across every invoice and
// tenant, newest first
func (s *PaymentService) ListForResident(ctx context.Context, residentID uuid.UUID) ([]billing.PaymentForResident, error) {
	return s.paymentRepo.ListForResident(ctx, residentID)
}

// AggregateUnpaid returns the sum of the resident's PENDING payment
// amounts, served from cache when possible
func (s *PaymentService) AggregateUnpaid(ctx context.Context, residentID uuid.UUID) (decimal.Decimal, error) {
	if s.cache != nil {
		if total, ok, err := s.cache.Get(ctx, residentID); err == nil && ok {
			return total, nil
		} else if err != nil {
			s.logger.Warn("Unpaid total cache read failed",
				zap.String("resident_id", residentID.String()),
				zap.Error(err))
		}
	}

	total, err := s.paymentRepo.SumUnpaidForResident(ctx, residentID)
	if err != nil {
		return decimal.Zero, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, residentID, total); err != nil {
			s.logger.Warn("Unpaid total cache write failed",
				zap.String("resident_id", residentID.String()),
				zap.Error(err))
		}
	}

	return total, nil
}

func (s *PaymentService) afterStatusChange(ctx context.Context, payment *billing.Payment) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, payment.ResidentID); err != nil {
			s.logger.Warn("Unpaid total cache invalidation failed",
				zap.String("resident_id", payment.ResidentID.String()),
				zap.Error(err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, payment.GetDomainEvents()...); err != nil {
			s.logger.Warn("Failed to publish payment events",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(err))
		}
		payment.ClearDomainEvents()
	}
}
