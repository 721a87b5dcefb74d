package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/viralzap/viralzap/internal/catalog/domain"
	"github.com/viralzap/viralzap/internal/catalog/repository"
	"github.com/viralzap/viralzap/internal/clock"
	"github.com/viralzap/viralzap/internal/config"
	exchangeratedomain "github.com/viralzap/viralzap/internal/exchangerate/domain"
	providerdomain "github.com/viralzap/viralzap/internal/provider/domain"
	"github.com/viralzap/viralzap/internal/settings"
	settingsdomain "github.com/viralzap/viralzap/internal/settings/domain"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fakeGateway struct {
	lists map[string]providerdomain.ServiceListResult
}

func (g *fakeGateway) ListServices(ctx context.Context, provider string) providerdomain.ServiceListResult {
	if result, ok := g.lists[provider]; ok {
		return result
	}
	return providerdomain.ServiceListResult{Provider: provider, Err: "provider_not_configured: " + provider}
}

func (g *fakeGateway) CreateOrder(ctx context.Context, provider string, req providerdomain.AddOrderRequest) providerdomain.OrderResult {
	return providerdomain.OrderResult{Error: "not implemented"}
}

func (g *fakeGateway) OrderStatus(ctx context.Context, provider, orderID string) providerdomain.StatusResult {
	return providerdomain.StatusResult{Error: "not implemented"}
}

func (g *fakeGateway) RequestRefill(ctx context.Context, provider, orderID string) providerdomain.RefillResult {
	return providerdomain.RefillResult{Error: "not implemented"}
}

func (g *fakeGateway) CancelOrder(ctx context.Context, provider, orderID string) providerdomain.CancelResult {
	return providerdomain.CancelResult{Error: "not implemented"}
}

func (g *fakeGateway) TestAllConnections(ctx context.Context) map[string]bool { return nil }

func (g *fakeGateway) Balances(ctx context.Context) []providerdomain.BalanceSnapshot { return nil }

type fixedRates struct {
	rate float64
}

func (f fixedRates) Rate(ctx context.Context) float64 { return f.rate }

func (f fixedRates) Override(ctx context.Context, rate float64) (*exchangeratedomain.ExchangeRate, error) {
	return nil, nil
}

func (f fixedRates) Current(ctx context.Context) (*exchangeratedomain.ExchangeRate, error) {
	return nil, nil
}

func newSyncTestService(t *testing.T, gw providerdomain.Gateway, fxRate float64) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Service{}, &settingsdomain.Setting{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	svc := &Service{
		db:       db,
		log:      zaptest.NewLogger(t),
		genID:    node,
		clock:    clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		repo:     repository.Provide(),
		gateway:  gw,
		fxRates:  fixedRates{rate: fxRate},
		pricing:  config.NewPricingConfigHolderFrom(config.DefaultPricingConfig()),
		settings: settings.NewRepository(db, node),
	}
	return svc, db
}

func remoteEntry(id, name, category, rate string) providerdomain.RemoteService {
	return providerdomain.RemoteService{
		Service:  providerdomain.FlexString(id),
		Name:     name,
		Category: category,
		Rate:     providerdomain.FlexString(rate),
		Min:      providerdomain.FlexString("100"),
		Max:      providerdomain.FlexString("10000"),
		Refill:   true,
	}
}

func TestSyncAllImportsAndPrices(t *testing.T) {
	gw := &fakeGateway{lists: map[string]providerdomain.ServiceListResult{
		providerdomain.ProviderSMMPrime: {
			Provider: providerdomain.ProviderSMMPrime,
			Services: []providerdomain.RemoteService{
				remoteEntry("42", "Instagram Followers", "Instagram", "1.00"),
			},
		},
	}}
	svc, db := newSyncTestService(t, gw, 5.50)

	report, err := svc.SyncAll(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 0, report.Failed)
	// The other provider has no credentials and must be reported, not fatal.
	assert.Contains(t, report.ProviderFailures, providerdomain.ProviderBoostZone)

	stored, err := svc.repo.FindByProviderKey(context.Background(), db, providerdomain.ProviderSMMPrime, "42")
	assert.NoError(t, err)
	if assert.NotNil(t, stored) {
		assert.Equal(t, "Instagram", stored.Platform)
		assert.Equal(t, "Seguidores", stored.Kind)
		assert.InDelta(t, 1.00, stored.ProviderRate, 1e-9)
		// 1.00 * 5.50 * (1 + 20/100)
		assert.InDelta(t, 6.60, stored.Rate, 1e-9)
		assert.Equal(t, domain.MarkupPercentage, stored.MarkupType)
		assert.InDelta(t, 20, stored.MarkupValue, 1e-9)
		assert.Equal(t, domain.StatusActive, stored.Status)
		assert.True(t, stored.Refill)
	}
}

func TestSyncAllIsIdempotent(t *testing.T) {
	gw := &fakeGateway{lists: map[string]providerdomain.ServiceListResult{
		providerdomain.ProviderSMMPrime: {
			Provider: providerdomain.ProviderSMMPrime,
			Services: []providerdomain.RemoteService{
				remoteEntry("42", "Instagram Followers", "Instagram", "1.00"),
				remoteEntry("43", "TikTok Likes", "TikTok", "0.50"),
			},
		},
	}}
	svc, db := newSyncTestService(t, gw, 5.50)

	first, err := svc.SyncAll(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, first.Imported)

	second, err := svc.SyncAll(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 2, second.Updated)

	var count int64
	assert.NoError(t, db.Model(&domain.Service{}).Count(&count).Error)
	assert.Equal(t, int64(2), count, "re-sync must not duplicate rows")
}

func TestSyncPreservesManualMarkupOnUpdate(t *testing.T) {
	gw := &fakeGateway{lists: map[string]providerdomain.ServiceListResult{
		providerdomain.ProviderSMMPrime: {
			Provider: providerdomain.ProviderSMMPrime,
			Services: []providerdomain.RemoteService{
				remoteEntry("42", "Instagram Followers", "Instagram", "1.00"),
			},
		},
	}}
	svc, db := newSyncTestService(t, gw, 5.50)

	_, err := svc.SyncAll(context.Background())
	assert.NoError(t, err)

	stored, err := svc.repo.FindByProviderKey(context.Background(), db, providerdomain.ProviderSMMPrime, "42")
	assert.NoError(t, err)
	stored.MarkupValue = 50
	assert.NoError(t, svc.repo.Update(context.Background(), db, stored))

	// Upstream raises its rate; the stored markup must survive the refresh.
	gw.lists[providerdomain.ProviderSMMPrime] = providerdomain.ServiceListResult{
		Provider: providerdomain.ProviderSMMPrime,
		Services: []providerdomain.RemoteService{
			remoteEntry("42", "Instagram Followers", "Instagram", "2.00"),
		},
	}
	_, err = svc.SyncAll(context.Background())
	assert.NoError(t, err)

	stored, err = svc.repo.FindByProviderKey(context.Background(), db, providerdomain.ProviderSMMPrime, "42")
	assert.NoError(t, err)
	assert.InDelta(t, 50, stored.MarkupValue, 1e-9)
	// 2.00 * 5.50 * 1.5
	assert.InDelta(t, 16.50, stored.Rate, 1e-9)
}

// missingOnceRepo pretends a key is absent for the first lookups so the sync
// attempts an insert that collides with the stored row.
type missingOnceRepo struct {
	domain.Repository
	misses int
}

func (r *missingOnceRepo) FindByProviderKey(ctx context.Context, db *gorm.DB, provider, providerServiceID string) (*domain.Service, error) {
	if r.misses > 0 {
		r.misses--
		return nil, nil
	}
	return r.Repository.FindByProviderKey(ctx, db, provider, providerServiceID)
}

func TestSyncRecoversFromConcurrentInsert(t *testing.T) {
	gw := &fakeGateway{lists: map[string]providerdomain.ServiceListResult{
		providerdomain.ProviderSMMPrime: {
			Provider: providerdomain.ProviderSMMPrime,
			Services: []providerdomain.RemoteService{
				remoteEntry("42", "Instagram Followers", "Instagram", "1.00"),
			},
		},
	}}
	svc, db := newSyncTestService(t, gw, 5.50)

	_, err := svc.SyncAll(context.Background())
	assert.NoError(t, err)

	// The next run misses the lookup, as if another replica inserted the row
	// between its lookup and its insert, and must fall back to updating.
	svc.repo = &missingOnceRepo{Repository: svc.repo, misses: 1}
	gw.lists[providerdomain.ProviderSMMPrime] = providerdomain.ServiceListResult{
		Provider: providerdomain.ProviderSMMPrime,
		Services: []providerdomain.RemoteService{
			remoteEntry("42", "Instagram Followers", "Instagram", "2.00"),
		},
	}

	report, err := svc.SyncAll(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, report.Imported)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, report.Failed)

	var count int64
	assert.NoError(t, db.Model(&domain.Service{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := svc.repo.FindByProviderKey(context.Background(), db, providerdomain.ProviderSMMPrime, "42")
	assert.NoError(t, err)
	// 2.00 * 5.50 * 1.2
	assert.InDelta(t, 13.20, stored.Rate, 1e-9)
}

func TestSyncSeedsMarkupFromSettings(t *testing.T) {
	gw := &fakeGateway{lists: map[string]providerdomain.ServiceListResult{
		providerdomain.ProviderSMMPrime: {
			Provider: providerdomain.ProviderSMMPrime,
			Services: []providerdomain.RemoteService{
				remoteEntry("42", "Instagram Followers", "Instagram", "1.00"),
			},
		},
	}}
	svc, db := newSyncTestService(t, gw, 5.50)
	assert.NoError(t, svc.settings.Set(context.Background(), settingsdomain.KeyMarkupPercentage, "35"))

	_, err := svc.SyncAll(context.Background())
	assert.NoError(t, err)

	stored, err := svc.repo.FindByProviderKey(context.Background(), db, providerdomain.ProviderSMMPrime, "42")
	assert.NoError(t, err)
	if assert.NotNil(t, stored) {
		assert.InDelta(t, 35, stored.MarkupValue, 1e-9)
		// 1.00 * 5.50 * 1.35
		assert.InDelta(t, 7.425, stored.Rate, 1e-9)
	}
}

func TestSyncIgnoresUnparsableMarkupSetting(t *testing.T) {
	gw := &fakeGateway{lists: map[string]providerdomain.ServiceListResult{
		providerdomain.ProviderSMMPrime: {
			Provider: providerdomain.ProviderSMMPrime,
			Services: []providerdomain.RemoteService{
				remoteEntry("42", "Instagram Followers", "Instagram", "1.00"),
			},
		},
	}}
	svc, db := newSyncTestService(t, gw, 5.50)
	assert.NoError(t, svc.settings.Set(context.Background(), settingsdomain.KeyMarkupPercentage, "lots"))

	_, err := svc.SyncAll(context.Background())
	assert.NoError(t, err)

	stored, err := svc.repo.FindByProviderKey(context.Background(), db, providerdomain.ProviderSMMPrime, "42")
	assert.NoError(t, err)
	if assert.NotNil(t, stored) {
		assert.InDelta(t, 20, stored.MarkupValue, 1e-9, "bad setting falls back to the config default")
	}
}

func TestSyncCapsErrorSamples(t *testing.T) {
	// Entries without a service id fail individually; all are counted but at
	// most five samples are kept.
	var entries []providerdomain.RemoteService
	for i := 0; i < 8; i++ {
		entries = append(entries, remoteEntry("", "Broken Entry", "Misc", "1.00"))
	}
	gw := &fakeGateway{lists: map[string]providerdomain.ServiceListResult{
		providerdomain.ProviderSMMPrime: {
			Provider: providerdomain.ProviderSMMPrime,
			Services: entries,
		},
	}}
	svc, _ := newSyncTestService(t, gw, 5.50)

	report, err := svc.SyncAll(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 8, report.Failed)
	assert.Len(t, report.Errors, 5)
}

func TestSyncClassifiesUnknownToDefaults(t *testing.T) {
	gw := &fakeGateway{lists: map[string]providerdomain.ServiceListResult{
		providerdomain.ProviderSMMPrime: {
			Provider: providerdomain.ProviderSMMPrime,
			Services: []providerdomain.RemoteService{
				remoteEntry("99", "Mystery Bundle", "Misc", "3.00"),
			},
		},
	}}
	svc, db := newSyncTestService(t, gw, 5.50)

	_, err := svc.SyncAll(context.Background())
	assert.NoError(t, err)

	stored, err := svc.repo.FindByProviderKey(context.Background(), db, providerdomain.ProviderSMMPrime, "99")
	assert.NoError(t, err)
	if assert.NotNil(t, stored) {
		assert.Equal(t, domain.PlatformOther, stored.Platform)
		assert.Equal(t, domain.KindOther, stored.Kind)
	}
}
