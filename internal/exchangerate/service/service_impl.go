package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/viralzap/viralzap/internal/clock"
	"github.com/viralzap/viralzap/internal/exchangerate/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Fetcher domain.Fetcher
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	fetcher domain.Fetcher
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("exchangerate.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		fetcher: p.Fetcher,
	}
}

// Rate resolves USD→BRL. Manual rates never expire; api rates expire after
// CacheTTL. When the remote endpoint fails the hard-coded fallback is
// returned and nothing is persisted.
func (s *Service) Rate(ctx context.Context) float64 {
	now := s.clock.Now()

	stored, err := s.repo.Find(ctx, s.db, domain.PairUSDBRL)
	if err != nil {
		s.log.Warn("exchange rate lookup failed", zap.Error(err))
	}
	if stored != nil && stored.Rate > 0 {
		if stored.Source == domain.SourceManual {
			return stored.Rate
		}
		if now.Sub(stored.UpdatedAt) < domain.CacheTTL {
			return stored.Rate
		}
	}

	fetched, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.log.Warn("remote rate fetch failed, using fallback",
			zap.Float64("fallback", domain.FallbackRate),
			zap.Error(err),
		)
		return domain.FallbackRate
	}

	row := &domain.ExchangeRate{
		Pair:      domain.PairUSDBRL,
		Rate:      fetched,
		Source:    domain.SourceAPI,
		UpdatedAt: now,
	}
	if stored != nil {
		row.ID = stored.ID
	} else {
		row.ID = s.genID.Generate().Int64()
	}
	if err := s.repo.Save(ctx, s.db, row); err != nil {
		s.log.Warn("exchange rate persist failed", zap.Error(err))
	}
	return fetched
}

func (s *Service) Override(ctx context.Context, rate float64) (*domain.ExchangeRate, error) {
	if rate <= 0 {
		return nil, domain.ErrInvalidRate
	}

	stored, err := s.repo.Find(ctx, s.db, domain.PairUSDBRL)
	if err != nil {
		return nil, err
	}

	row := &domain.ExchangeRate{
		Pair:      domain.PairUSDBRL,
		Rate:      rate,
		Source:    domain.SourceManual,
		UpdatedAt: s.clock.Now(),
	}
	if stored != nil {
		row.ID = stored.ID
	} else {
		row.ID = s.genID.Generate().Int64()
	}
	if err := s.repo.Save(ctx, s.db, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Service) Current(ctx context.Context) (*domain.ExchangeRate, error) {
	return s.repo.Find(ctx, s.db, domain.PairUSDBRL)
}
