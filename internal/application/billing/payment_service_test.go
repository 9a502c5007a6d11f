package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/villahub/backend/internal/domain/billing"
	"github.com/villahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createPendingPayment(t *testing.T, won int64) *billing.Payment {
	t.Helper()
	p, err := billing.NewPayment(uuid.New(), uuid.New(), uuid.New(), uuid.New(), valueobject.NewMoneyKRW(won))
	require.NoError(t, err)
	return p
}

func TestPaymentServiceUpdateStatus(t *testing.T) {
	t.Run("legal transition persists and invalidates the cache", func(t *testing.T) {
		payment := createPendingPayment(t, 100000)
		repo := newFakePaymentRepo(payment)
		cache := newFakeCache()
		publisher := &fakePublisher{}
		svc := NewPaymentService(repo, newFakeDedup(), cache, publisher, zap.NewNop())

		updated, err := svc.UpdateStatus(context.Background(), payment.ID, billing.PaymentStatusCompleted)
		require.NoError(t, err)
		assert.True(t, updated.IsCompleted())
		assert.Equal(t, 1, cache.invalidated)
		assert.Contains(t, publisher.eventTypes(), "PaymentCompleted")
	})

	t.Run("illegal transition is rejected", func(t *testing.T) {
		payment := createPendingPayment(t, 100000)
		require.NoError(t, payment.Complete())
		payment.ClearDomainEvents()
		repo := newFakePaymentRepo(payment)
		svc := NewPaymentService(repo, newFakeDedup(), newFakeCache(), &fakePublisher{}, zap.NewNop())

		_, err := svc.UpdateStatus(context.Background(), payment.ID, billing.PaymentStatusPending)
		assert.Error(t, err)
	})

	t.Run("unknown payment", func(t *testing.T) {
		svc := NewPaymentService(newFakePaymentRepo(), newFakeDedup(), newFakeCache(), &fakePublisher{}, zap.NewNop())
		_, err := svc.UpdateStatus(context.Background(), uuid.New(), billing.PaymentStatusCompleted)
		assert.Error(t, err)
	})
}

func TestPaymentServiceGatewayCallback(t *testing.T) {
	t.Run("completes the payment once", func(t *testing.T) {
		payment := createPendingPayment(t, 100000)
		repo := newFakePaymentRepo(payment)
		svc := NewPaymentService(repo, newFakeDedup(), newFakeCache(), &fakePublisher{}, zap.NewNop())

		err := svc.HandleGatewayCallback(context.Background(), GatewayCallbackRequest{
			PaymentID:     payment.ID,
			TransactionID: "txn-001",
		})
		require.NoError(t, err)
		assert.True(t, payment.IsCompleted())
	})

	t.Run("redelivered callback is acknowledged without error", func(t *testing.T) {
		payment := createPendingPayment(t, 100000)
		repo := newFakePaymentRepo(payment)
		cache := newFakeCache()
		svc := NewPaymentService(repo, newFakeDedup(), cache, &fakePublisher{}, zap.NewNop())

		req := GatewayCallbackRequest{PaymentID: payment.ID, TransactionID: "txn-002"}
		require.NoError(t, svc.HandleGatewayCallback(context.Background(), req))
		invalidations := cache.invalidated

		require.NoError(t, svc.HandleGatewayCallback(context.Background(), req))
		assert.Equal(t, invalidations, cache.invalidated, "second delivery must not touch the ledger")
	})

	t.Run("empty transaction ID rejected", func(t *testing.T) {
		svc := NewPaymentService(newFakePaymentRepo(), newFakeDedup(), newFakeCache(), &fakePublisher{}, zap.NewNop())
		err := svc.HandleGatewayCallback(context.Background(), GatewayCallbackRequest{PaymentID: uuid.New()})
		assert.Error(t, err)
	})

	t.Run("failed delivery releases the transaction ID for the retry", func(t *testing.T) {
		payment := createPendingPayment(t, 100000)
		repo := &copyingPaymentRepo{fakePaymentRepo: newFakePaymentRepo(payment), failSaves: 1}
		dedup := newFakeDedup()
		svc := NewPaymentService(repo, dedup, newFakeCache(), &fakePublisher{}, zap.NewNop())

		req := GatewayCallbackRequest{PaymentID: payment.ID, TransactionID: "txn-003"}
		require.Error(t, svc.HandleGatewayCallback(context.Background(), req))

		processed, err := dedup.IsProcessed(context.Background(), "pg-callback:txn-003")
		require.NoError(t, err)
		assert.False(t, processed, "failed delivery must not consume the transaction ID")

		stored, err := repo.FindByID(context.Background(), payment.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.PaymentStatusPending, stored.Status)

		// gateway redelivers the same callback after the transient failure
		require.NoError(t, svc.HandleGatewayCallback(context.Background(), req))

		stored, err = repo.FindByID(context.Background(), payment.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsCompleted())
	})

	t.Run("unknown payment does not consume the transaction ID", func(t *testing.T) {
		dedup := newFakeDedup()
		svc := NewPaymentService(newFakePaymentRepo(), dedup, newFakeCache(), &fakePublisher{}, zap.NewNop())

		req := GatewayCallbackRequest{PaymentID: uuid.New(), TransactionID: "txn-004"}
		require.Error(t, svc.HandleGatewayCallback(context.Background(), req))

		processed, err := dedup.IsProcessed(context.Background(), "pg-callback:txn-004")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

// copyingPaymentRepo hands out copies like a row scan would, so in-memory
// mutations do not leak into the store when Save fails
type copyingPaymentRepo struct {
	*fakePaymentRepo
	failSaves int
}

func (r *copyingPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	p, err := r.fakePaymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	copied := *p
	return &copied, nil
}

func (r *copyingPaymentRepo) Save(ctx context.Context, payment *billing.Payment) error {
	if r.failSaves > 0 {
		r.failSaves--
		return errors.New("connection reset by peer")
	}
	return r.fakePaymentRepo.Save(ctx, payment)
}

func TestPaymentServiceAggregateUnpaid(t *testing.T) {
	t.Run("sums pending payments and caches the result", func(t *testing.T) {
		residentID := uuid.New()
		p1, err := billing.NewPayment(uuid.New(), uuid.New(), residentID, uuid.New(), valueobject.NewMoneyKRW(30000))
		require.NoError(t, err)
		p2, err := billing.NewPayment(uuid.New(), uuid.New(), residentID, uuid.New(), valueobject.NewMoneyKRW(20000))
		require.NoError(t, err)
		paid, err := billing.NewPayment(uuid.New(), uuid.New(), residentID, uuid.New(), valueobject.NewMoneyKRW(99000))
		require.NoError(t, err)
		require.NoError(t, paid.Complete())

		repo := newFakePaymentRepo(p1, p2, paid)
		cache := newFakeCache()
		svc := NewPaymentService(repo, newFakeDedup(), cache, &fakePublisher{}, zap.NewNop())

		total, err := svc.AggregateUnpaid(context.Background(), residentID)
		require.NoError(t, err)
		assert.Equal(t, int64(50000), total.IntPart())
		assert.Equal(t, 1, repo.unpaidCalls)

		// second read comes from the cache
		total, err = svc.AggregateUnpaid(context.Background(), residentID)
		require.NoError(t, err)
		assert.Equal(t, int64(50000), total.IntPart())
		assert.Equal(t, 1, repo.unpaidCalls)
	})

	t.Run("resident with no payments owes zero", func(t *testing.T) {
		svc := NewPaymentService(newFakePaymentRepo(), newFakeDedup(), newFakeCache(), &fakePublisher{}, zap.NewNop())
		total, err := svc.AggregateUnpaid(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})
}

func TestPaymentServiceListViews(t *testing.T) {
	invoiceID := uuid.New()
	residentID := uuid.New()

	p1, err := billing.NewPayment(uuid.New(), invoiceID, residentID, uuid.New(), valueobject.NewMoneyKRW(10000))
	require.NoError(t, err)
	p2, err := billing.NewPayment(uuid.New(), invoiceID, uuid.New(), uuid.New(), valueobject.NewMoneyKRW(10000))
	require.NoError(t, err)

	repo := newFakePaymentRepo(p1, p2)
	svc := NewPaymentService(repo, newFakeDedup(), newFakeCache(), &fakePublisher{}, zap.NewNop())

	forInvoice, err := svc.ListForInvoice(context.Background(), invoiceID)
	require.NoError(t, err)
	assert.Len(t, forInvoice, 2)

	forResident, err := svc.ListForResident(context.Background(), residentID)
	require.NoError(t, err)
	assert.Len(t, forResident, 1)

	// reads are stable absent intervening writes
	again, err := svc.ListForResident(context.Background(), residentID)
	require.NoError(t, err)
	assert.Equal(t, forResident, again)
}
