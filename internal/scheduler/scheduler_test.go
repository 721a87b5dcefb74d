package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	catalogdomain "github.com/viralzap/viralzap/internal/catalog/domain"
	"github.com/viralzap/viralzap/internal/clock"
	credentialdomain "github.com/viralzap/viralzap/internal/credential/domain"
	orderdomain "github.com/viralzap/viralzap/internal/order/domain"
	providerdomain "github.com/viralzap/viralzap/internal/provider/domain"
	"go.uber.org/zap"
)

type fakeCatalogSvc struct {
	report *catalogdomain.SyncReport
	err    error
	calls  int
}

func (f *fakeCatalogSvc) SyncAll(ctx context.Context) (*catalogdomain.SyncReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.report != nil {
		return f.report, nil
	}
	return &catalogdomain.SyncReport{}, nil
}

func (f *fakeCatalogSvc) List(ctx context.Context, req catalogdomain.ListRequest) (*catalogdomain.ListResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCatalogSvc) Get(ctx context.Context, id string) (*catalogdomain.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCatalogSvc) Update(ctx context.Context, req catalogdomain.UpdateRequest) (*catalogdomain.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCatalogSvc) BulkMarkup(ctx context.Context, req catalogdomain.BulkMarkupRequest) (int, error) {
	return 0, errors.New("not implemented")
}

type fakeOrderSvc struct {
	err   error
	calls int
	slow  time.Duration
}

func (f *fakeOrderSvc) SyncAllStatuses(ctx context.Context) (int, error) {
	f.calls++
	if f.slow > 0 {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(f.slow):
		}
	}
	return 0, f.err
}

func (f *fakeOrderSvc) Place(ctx context.Context, req orderdomain.PlaceRequest) (*orderdomain.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOrderSvc) Get(ctx context.Context, id string) (*orderdomain.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOrderSvc) List(ctx context.Context, req orderdomain.ListRequest) (*orderdomain.ListResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOrderSvc) SyncStatus(ctx context.Context, id string) (*orderdomain.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOrderSvc) RequestRefill(ctx context.Context, id string) (*orderdomain.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOrderSvc) Cancel(ctx context.Context, id string) (*orderdomain.Response, error) {
	return nil, errors.New("not implemented")
}

type fakeCredentialSvc struct {
	stored map[string]float64
}

func (f *fakeCredentialSvc) ActiveClientCredentials(ctx context.Context) ([]providerdomain.ClientCredential, error) {
	return nil, nil
}

func (f *fakeCredentialSvc) Save(ctx context.Context, req credentialdomain.SaveRequest) (*credentialdomain.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCredentialSvc) Toggle(ctx context.Context, provider string, active bool) (*credentialdomain.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCredentialSvc) Remove(ctx context.Context, provider string) error {
	return errors.New("not implemented")
}

func (f *fakeCredentialSvc) List(ctx context.Context) ([]credentialdomain.Response, error) {
	return nil, nil
}

func (f *fakeCredentialSvc) StoreBalance(ctx context.Context, provider string, balance float64, currency string) error {
	if f.stored == nil {
		f.stored = make(map[string]float64)
	}
	f.stored[provider] = balance
	return nil
}

type fakeBalancesGateway struct {
	snapshots []providerdomain.BalanceSnapshot
}

func (g *fakeBalancesGateway) ListServices(ctx context.Context, provider string) providerdomain.ServiceListResult {
	return providerdomain.ServiceListResult{Provider: provider, Err: "not implemented"}
}

func (g *fakeBalancesGateway) CreateOrder(ctx context.Context, provider string, req providerdomain.AddOrderRequest) providerdomain.OrderResult {
	return providerdomain.OrderResult{Error: "not implemented"}
}

func (g *fakeBalancesGateway) OrderStatus(ctx context.Context, provider, orderID string) providerdomain.StatusResult {
	return providerdomain.StatusResult{Error: "not implemented"}
}

func (g *fakeBalancesGateway) RequestRefill(ctx context.Context, provider, orderID string) providerdomain.RefillResult {
	return providerdomain.RefillResult{Error: "not implemented"}
}

func (g *fakeBalancesGateway) CancelOrder(ctx context.Context, provider, orderID string) providerdomain.CancelResult {
	return providerdomain.CancelResult{Error: "not implemented"}
}

func (g *fakeBalancesGateway) TestAllConnections(ctx context.Context) map[string]bool { return nil }

func (g *fakeBalancesGateway) Balances(ctx context.Context) []providerdomain.BalanceSnapshot {
	return g.snapshots
}

type schedulerFixture struct {
	sched   *Scheduler
	catalog *fakeCatalogSvc
	orders  *fakeOrderSvc
	creds   *fakeCredentialSvc
	gateway *fakeBalancesGateway
	clock   *clock.FakeClock
}

func newSchedulerFixture(t *testing.T, cfg Config) *schedulerFixture {
	t.Helper()
	f := &schedulerFixture{
		catalog: &fakeCatalogSvc{},
		orders:  &fakeOrderSvc{},
		creds:   &fakeCredentialSvc{},
		gateway: &fakeBalancesGateway{},
		clock:   clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	sched, err := New(Params{
		Log:           zap.NewNop(),
		Clock:         f.clock,
		CatalogSvc:    f.catalog,
		OrderSvc:      f.orders,
		CredentialSvc: f.creds,
		Gateway:       f.gateway,
		Config:        cfg,
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	f.sched = sched
	return f
}

func TestNewRejectsMissingDeps(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunOnceRunsAllJobsOnFirstTick(t *testing.T) {
	f := newSchedulerFixture(t, Config{})

	assert.NoError(t, f.sched.RunOnce(context.Background()))

	assert.Equal(t, 1, f.orders.calls)
	assert.Equal(t, 1, f.catalog.calls)
}

func TestRunOnceHonorsJobIntervals(t *testing.T) {
	f := newSchedulerFixture(t, Config{CatalogInterval: 6 * time.Hour})

	assert.NoError(t, f.sched.RunOnce(context.Background()))
	assert.Equal(t, 1, f.catalog.calls)

	// One minute later the catalog is not due, reconciliation still runs.
	f.clock.Advance(time.Minute)
	assert.NoError(t, f.sched.RunOnce(context.Background()))
	assert.Equal(t, 1, f.catalog.calls)
	assert.Equal(t, 2, f.orders.calls)

	f.clock.Advance(6 * time.Hour)
	assert.NoError(t, f.sched.RunOnce(context.Background()))
	assert.Equal(t, 2, f.catalog.calls)
}

func TestRunOnceRespectsEnabledJobs(t *testing.T) {
	f := newSchedulerFixture(t, Config{EnabledJobs: []string{"order_reconcile"}})

	assert.NoError(t, f.sched.RunOnce(context.Background()))

	assert.Equal(t, 1, f.orders.calls)
	assert.Equal(t, 0, f.catalog.calls)
}

func TestJobErrorDoesNotStopOtherJobs(t *testing.T) {
	f := newSchedulerFixture(t, Config{})
	f.orders.err = errors.New("reconcile blew up")

	err := f.sched.RunOnce(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "order_reconcile")
	assert.Equal(t, 1, f.catalog.calls, "catalog sync still ran")
}

func TestJobTimeoutIsSoft(t *testing.T) {
	f := newSchedulerFixture(t, Config{ReconcileTimeout: 10 * time.Millisecond})
	f.orders.slow = time.Second

	err := f.sched.RunOnce(context.Background())

	assert.NoError(t, err, "a timed-out job is logged, not escalated")
}

func TestProviderBalancesJobStoresBalances(t *testing.T) {
	f := newSchedulerFixture(t, Config{})
	f.gateway.snapshots = []providerdomain.BalanceSnapshot{
		{Provider: providerdomain.ProviderSMMPrime, Balance: 100.5, Currency: "USD"},
		{Provider: providerdomain.ProviderBoostZone, Err: "bad key"},
	}

	assert.NoError(t, f.sched.ProviderBalancesJob(context.Background()))

	assert.InDelta(t, 100.5, f.creds.stored[providerdomain.ProviderSMMPrime], 1e-9)
	_, stored := f.creds.stored[providerdomain.ProviderBoostZone]
	assert.False(t, stored, "a failing panel must not overwrite the stored balance")
}
