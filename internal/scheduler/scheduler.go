package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	catalogdomain "github.com/viralzap/viralzap/internal/catalog/domain"
	"github.com/viralzap/viralzap/internal/clock"
	credentialdomain "github.com/viralzap/viralzap/internal/credential/domain"
	"github.com/viralzap/viralzap/internal/metrics"
	orderdomain "github.com/viralzap/viralzap/internal/order/domain"
	providerdomain "github.com/viralzap/viralzap/internal/provider/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: missing required dependency")

type Params struct {
	fx.In

	Log           *zap.Logger
	Clock         clock.Clock
	CatalogSvc    catalogdomain.CatalogService
	OrderSvc      orderdomain.OrderService
	CredentialSvc credentialdomain.Service
	Gateway       providerdomain.Gateway
	Metrics       *metrics.Metrics `optional:"true"`
	Locker        *Locker          `optional:"true"`
	Config        Config           `optional:"true"`
}

type Scheduler struct {
	log           *zap.Logger
	cfg           Config
	clock         clock.Clock
	catalogSvc    catalogdomain.CatalogService
	orderSvc      orderdomain.OrderService
	credentialSvc credentialdomain.Service
	gateway       providerdomain.Gateway
	metrics       *metrics.Metrics
	locker        *Locker

	lastCatalogSync time.Time
	lastBalanceRun  time.Time
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.CatalogSvc == nil || p.OrderSvc == nil || p.CredentialSvc == nil || p.Gateway == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	return &Scheduler{
		log:           p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:           cfg,
		clock:         p.Clock,
		catalogSvc:    p.CatalogSvc,
		orderSvc:      p.OrderSvc,
		credentialSvc: p.CredentialSvc,
		gateway:       p.Gateway,
		metrics:       p.Metrics,
		locker:        p.Locker,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	token, ok := s.acquireLock(ctx, name)
	if !ok {
		s.log.Debug("job already held elsewhere", zap.String("job", name))
		return nil
	}
	defer s.releaseLock(name, token)

	s.metrics.IncJobRun(name)
	log := s.log.With(zap.String("job", name))
	log.Info("job started")

	err := fn(ctx)
	s.metrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		log.Info("job finished", zap.Duration("elapsed", time.Since(start)))
		return nil
	}

	// A deadline is a soft timeout: log it and let the next tick resume.
	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		s.metrics.IncJobTimeout(name)
	}
	s.metrics.IncJobError(name)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	log.Warn("job failed", zap.Error(err))
	return fmt.Errorf("%s: %w", name, err)
}

// acquireLock is a no-op success when no locker is configured.
func (s *Scheduler) acquireLock(ctx context.Context, name string) (string, bool) {
	if s.locker == nil {
		return "", true
	}
	token, ok, err := s.locker.TryLock(ctx, "viralzap:job:"+name, s.cfg.LockTTL)
	if err != nil {
		s.log.Warn("lock acquisition failed, running unguarded",
			zap.String("job", name),
			zap.Error(err),
		)
		return "", true
	}
	return token, ok
}

func (s *Scheduler) releaseLock(name, token string) {
	if s.locker == nil || token == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.locker.Release(ctx, "viralzap:job:"+name, token); err != nil {
		s.log.Warn("lock release failed", zap.String("job", name), zap.Error(err))
	}
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	now := s.clock.Now()

	jobs := []struct {
		Name    string
		Enabled bool
		Run     func(context.Context) error
	}{
		{"order_reconcile", s.isJobEnabled("order_reconcile"), func(ctx context.Context) error {
			return s.runJob(ctx, "order_reconcile", s.cfg.ReconcileTimeout, s.OrderReconcileJob)
		}},
		{"catalog_sync", s.isJobEnabled("catalog_sync") && s.due(now, s.lastCatalogSync, s.cfg.CatalogInterval), func(ctx context.Context) error {
			s.lastCatalogSync = now
			return s.runJob(ctx, "catalog_sync", s.cfg.SyncTimeout, s.CatalogSyncJob)
		}},
		{"provider_balances", s.isJobEnabled("provider_balances") && s.due(now, s.lastBalanceRun, s.cfg.BalanceInterval), func(ctx context.Context) error {
			s.lastBalanceRun = now
			return s.runJob(ctx, "provider_balances", 30*time.Second, s.ProviderBalancesJob)
		}},
	}

	for _, job := range jobs {
		if job.Enabled {
			err = errors.Join(err, job.Run(parent))
		}
	}

	return err
}

func (s *Scheduler) due(now, last time.Time, interval time.Duration) bool {
	return last.IsZero() || now.Sub(last) >= interval
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// An empty EnabledJobs list enables everything (monolith mode).
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// OrderReconcileJob pulls provider-side status for every open order.
func (s *Scheduler) OrderReconcileJob(ctx context.Context) error {
	updated, err := s.orderSvc.SyncAllStatuses(ctx)
	if err != nil {
		return err
	}
	s.metrics.AddOrdersReconciled(updated)
	return nil
}

// CatalogSyncJob refreshes the local catalog from every configured provider.
func (s *Scheduler) CatalogSyncJob(ctx context.Context) error {
	report, err := s.catalogSvc.SyncAll(ctx)
	if err != nil {
		return err
	}
	s.metrics.AddServicesSynced("imported", report.Imported)
	s.metrics.AddServicesSynced("updated", report.Updated)
	for provider := range report.ProviderFailures {
		s.metrics.IncProviderSyncFailure(provider)
	}
	if report.Failed > 0 {
		s.log.Warn("catalog sync finished with per-entry failures",
			zap.Int("failed", report.Failed),
			zap.Strings("samples", report.Errors),
		)
	}
	return nil
}

// ProviderBalancesJob snapshots each panel's remaining balance onto its
// credential row so the admin view can warn before a panel runs dry.
func (s *Scheduler) ProviderBalancesJob(ctx context.Context) error {
	var jobErr error
	for _, snap := range s.gateway.Balances(ctx) {
		if snap.Err != "" {
			s.log.Warn("balance check failed",
				zap.String("provider", snap.Provider),
				zap.String("error", snap.Err),
			)
			continue
		}
		if err := s.credentialSvc.StoreBalance(ctx, snap.Provider, snap.Balance, snap.Currency); err != nil {
			jobErr = errors.Join(jobErr, err)
		}
	}
	return jobErr
}
