package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/viralzap/viralzap/internal/clock"
	"github.com/viralzap/viralzap/internal/exchangerate/domain"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fakeRepo struct {
	row   *domain.ExchangeRate
	saves int
}

func (r *fakeRepo) Find(ctx context.Context, db *gorm.DB, pair string) (*domain.ExchangeRate, error) {
	if r.row == nil || r.row.Pair != pair {
		return nil, nil
	}
	copied := *r.row
	return &copied, nil
}

func (r *fakeRepo) Save(ctx context.Context, db *gorm.DB, row *domain.ExchangeRate) error {
	copied := *row
	r.row = &copied
	r.saves++
	return nil
}

type fakeFetcher struct {
	rate  float64
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.rate, nil
}

func newTestService(t *testing.T, repo domain.Repository, fetcher domain.Fetcher, clk clock.Clock) *Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return &Service{
		log:     zaptest.NewLogger(t),
		genID:   node,
		clock:   clk,
		repo:    repo,
		fetcher: fetcher,
	}
}

func TestRateFetchesAndPersistsWhenEmpty(t *testing.T) {
	repo := &fakeRepo{}
	fetcher := &fakeFetcher{rate: 5.12}
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestService(t, repo, fetcher, clk)

	got := svc.Rate(context.Background())

	assert.InDelta(t, 5.12, got, 1e-9)
	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, domain.SourceAPI, repo.row.Source)
}

func TestRateUsesFreshCacheWithoutFetching(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{row: &domain.ExchangeRate{
		ID:        1,
		Pair:      domain.PairUSDBRL,
		Rate:      5.40,
		Source:    domain.SourceAPI,
		UpdatedAt: now.Add(-30 * time.Minute),
	}}
	fetcher := &fakeFetcher{rate: 9.99}
	svc := newTestService(t, repo, fetcher, clock.NewFakeClock(now))

	got := svc.Rate(context.Background())

	assert.InDelta(t, 5.40, got, 1e-9)
	assert.Equal(t, 0, fetcher.calls)
}

func TestRateRefetchesAfterCacheExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{row: &domain.ExchangeRate{
		ID:        1,
		Pair:      domain.PairUSDBRL,
		Rate:      5.40,
		Source:    domain.SourceAPI,
		UpdatedAt: now.Add(-domain.CacheTTL - time.Minute),
	}}
	fetcher := &fakeFetcher{rate: 5.60}
	svc := newTestService(t, repo, fetcher, clock.NewFakeClock(now))

	got := svc.Rate(context.Background())

	assert.InDelta(t, 5.60, got, 1e-9)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, int64(1), repo.row.ID, "existing row id must be reused")
	assert.Equal(t, now, repo.row.UpdatedAt)
}

func TestRateManualOverrideNeverExpires(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{row: &domain.ExchangeRate{
		ID:        1,
		Pair:      domain.PairUSDBRL,
		Rate:      6.00,
		Source:    domain.SourceManual,
		UpdatedAt: now.Add(-90 * 24 * time.Hour),
	}}
	fetcher := &fakeFetcher{rate: 5.60}
	svc := newTestService(t, repo, fetcher, clock.NewFakeClock(now))

	got := svc.Rate(context.Background())

	assert.InDelta(t, 6.00, got, 1e-9)
	assert.Equal(t, 0, fetcher.calls)
}

func TestRateFallsBackWithoutPersisting(t *testing.T) {
	repo := &fakeRepo{}
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	svc := newTestService(t, repo, fetcher, clock.NewFakeClock(time.Now()))

	got := svc.Rate(context.Background())

	assert.InDelta(t, domain.FallbackRate, got, 1e-9)
	assert.Equal(t, 0, repo.saves, "fallback must not be written as if it were a quote")
}

func TestOverride(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, &fakeFetcher{rate: 5.0}, clock.NewFakeClock(time.Now()))

	row, err := svc.Override(context.Background(), 5.75)
	assert.NoError(t, err)
	assert.Equal(t, domain.SourceManual, row.Source)
	assert.InDelta(t, 5.75, row.Rate, 1e-9)

	_, err = svc.Override(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = svc.Override(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidRate)
}
