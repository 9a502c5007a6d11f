package scheduler

import (
	"context"
	"sync"
	"time"

	appbilling "github.com/villahub/backend/internal/application/billing"
	"github.com/villahub/backend/internal/domain/billing"
	"github.com/villahub/backend/internal/domain/community"
	"go.uber.org/zap"
)

// autoBillingTickInterval is the interval at which the scheduler checks
// whether the configured run time has arrived
const autoBillingTickInterval = 1 * time.Minute

// InvoiceCreator is the slice of the invoice service the scheduler needs
type InvoiceCreator interface {
	CreateInvoice(ctx context.Context, req appbilling.CreateInvoiceRequest) (*billing.InvoiceWithPayments, error)
}

// AutoBillingSchedulerConfig holds configuration for the auto-billing scheduler
type AutoBillingSchedulerConfig struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// RunHour is the hour (0-23) of the daily billing run
	RunHour int
	// RunMinute is the minute (0-59) of the daily billing run
	RunMinute int
}

// AutoBillingScheduler fires once a day and creates the monthly invoice for
// every tenant whose auto-billing day matches today's day of month. Each
// tenant is billed independently; one tenant's failure never blocks the rest.
type AutoBillingScheduler struct {
	config     AutoBillingSchedulerConfig
	tenantRepo community.TenantRepository
	invoices   InvoiceCreator
	logger     *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewAutoBillingScheduler creates a new AutoBillingScheduler
func NewAutoBillingScheduler(
	config AutoBillingSchedulerConfig,
	tenantRepo community.TenantRepository,
	invoices InvoiceCreator,
	logger *zap.Logger,
) *AutoBillingScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoBillingScheduler{
		config:     config,
		tenantRepo: tenantRepo,
		invoices:   invoices,
		logger:     logger,
	}
}

// Start starts the scheduler loop
func (s *AutoBillingScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Auto-billing scheduler started",
		zap.Int("run_hour", s.config.RunHour),
		zap.Int("run_minute", s.config.RunMinute),
		zap.Timep("next_run_at", s.nextRunAt),
	)

	return nil
}

// Stop stops the scheduler
func (s *AutoBillingScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Auto-billing scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Auto-billing scheduler stop timed out")
		return ctx.Err()
	}
}

// runLoop checks every minute whether the configured run time has arrived
func (s *AutoBillingScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(autoBillingTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.RunDailyBilling(ctx, now)
				s.calculateNextRunTime()
			}
		}
	}
}

// shouldRun checks if the daily run is due at the given time
func (s *AutoBillingScheduler) shouldRun(now time.Time) bool {
	return now.Hour() == s.config.RunHour && now.Minute() == s.config.RunMinute
}

// calculateNextRunTime calculates the next run time
func (s *AutoBillingScheduler) calculateNextRunTime() {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.RunHour, s.config.RunMinute, 0, 0, now.Location())

	// If we've already passed today's run time, schedule for tomorrow
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// RunDailyBilling bills every tenant whose auto-billing day matches the
// given date. Failures are logged and skipped so the remaining tenants
// still get their invoices.
func (s *AutoBillingScheduler) RunDailyBilling(ctx context.Context, now time.Time) {
	day := now.Day()
	month := now.Format("2006-01")

	s.mu.Lock()
	runAt := now
	s.lastRunAt = &runAt
	s.mu.Unlock()

	tenants, err := s.tenantRepo.FindByAutoBillingDay(ctx, day)
	if err != nil {
		s.logger.Error("Failed to fetch tenants for auto billing",
			zap.Int("day", day),
			zap.Error(err),
		)
		return
	}

	if len(tenants) == 0 {
		s.logger.Debug("No tenants to bill today", zap.Int("day", day))
		return
	}

	s.logger.Info("Starting auto-billing run",
		zap.Int("day", day),
		zap.String("billing_month", month),
		zap.Int("tenant_count", len(tenants)),
	)

	billed := 0
	for i := range tenants {
		tenant := &tenants[i]
		if tenant.DefaultMonthlyAmount == nil {
			continue
		}

		req := appbilling.CreateInvoiceRequest{
			TenantID:     tenant.ID,
			BillingMonth: month,
			Type:         billing.InvoiceTypeFixed,
			Memo:         "Monthly maintenance fee (auto billing)",
			TotalAmount:  tenant.DefaultMonthlyAmount,
		}

		result, err := s.invoices.CreateInvoice(ctx, req)
		if err != nil {
			// A tenant with no residents is a normal state, not a failure.
			s.logger.Warn("Auto billing skipped tenant",
				zap.String("tenant_id", tenant.ID.String()),
				zap.String("tenant_name", tenant.Name),
				zap.String("billing_month", month),
				zap.Error(err),
			)
			continue
		}

		billed++
		s.logger.Info("Auto billing created invoice",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("invoice_id", result.Invoice.ID.String()),
			zap.String("billing_month", month),
			zap.Int("payment_count", len(result.Payments)),
		)
	}

	s.logger.Info("Auto-billing run finished",
		zap.String("billing_month", month),
		zap.Int("tenant_count", len(tenants)),
		zap.Int("billed", billed),
	)
}

// TriggerManualRun runs the daily billing immediately.
// Uses a background context so an HTTP request ending does not cancel the run.
func (s *AutoBillingScheduler) TriggerManualRun(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	go s.RunDailyBilling(context.Background(), time.Now())
	return nil
}

// GetStatus returns the current status of the scheduler
func (s *AutoBillingScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":     s.config.Enabled,
		"is_running":  s.isRunning,
		"run_hour":    s.config.RunHour,
		"run_minute":  s.config.RunMinute,
		"last_run_at": s.lastRunAt,
		"next_run_at": s.nextRunAt,
	}
}

// GetNextRunAt returns when the next scheduled run will occur
func (s *AutoBillingScheduler) GetNextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}
