package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/viralzap/viralzap/internal/catalog/domain"
	"github.com/viralzap/viralzap/internal/clock"
	"github.com/viralzap/viralzap/internal/config"
	exchangeratedomain "github.com/viralzap/viralzap/internal/exchangerate/domain"
	providerdomain "github.com/viralzap/viralzap/internal/provider/domain"
	settingsdomain "github.com/viralzap/viralzap/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Gateway  providerdomain.Gateway
	FXRates  exchangeratedomain.Service
	Pricing  *config.PricingConfigHolder
	Settings settingsdomain.Repository `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	gateway  providerdomain.Gateway
	fxRates  exchangeratedomain.Service
	pricing  *config.PricingConfigHolder
	settings settingsdomain.Repository
}

func New(p Params) domain.CatalogService {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("catalog.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		gateway:  p.Gateway,
		fxRates:  p.FXRates,
		pricing:  p.Pricing,
		settings: p.Settings,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	filter := domain.ListRequest{
		Provider: strings.TrimSpace(req.Provider),
		Platform: strings.TrimSpace(req.Platform),
		Kind:     strings.TrimSpace(req.Kind),
		Status:   strings.TrimSpace(req.Status),
		Search:   strings.TrimSpace(req.Search),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 25
	}

	items, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := &domain.ListResponse{
		Items:    make([]domain.Response, 0, len(items)),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, s.toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	serviceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, serviceID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	serviceID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, serviceID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	repriced := false
	if req.MarkupType != nil {
		markupType := strings.TrimSpace(*req.MarkupType)
		if markupType != domain.MarkupPercentage && markupType != domain.MarkupFixed {
			return nil, domain.ErrInvalidMarkup
		}
		item.MarkupType = markupType
		repriced = true
	}
	if req.MarkupValue != nil {
		if *req.MarkupValue < 0 {
			return nil, domain.ErrInvalidMarkup
		}
		item.MarkupValue = *req.MarkupValue
		repriced = true
	}
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if status != domain.StatusActive && status != domain.StatusInactive {
			return nil, domain.ErrInvalidStatus
		}
		item.Status = status
	}

	if repriced {
		item.Rate = domain.LocalRate(item.ProviderRate, s.fxRates.Rate(ctx), item.MarkupType, item.MarkupValue)
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

// BulkMarkup sets a percentage markup on every matching row and recomputes
// the sell rates with the currently resolved exchange rate. Per-row failures
// are logged and skipped; the count of updated rows is returned.
func (s *Service) BulkMarkup(ctx context.Context, req domain.BulkMarkupRequest) (int, error) {
	if req.MarkupPercent < 0 {
		return 0, domain.ErrInvalidMarkup
	}

	items, err := s.repo.FindForMarkup(ctx, s.db, strings.TrimSpace(req.Provider), strings.TrimSpace(req.Platform))
	if err != nil {
		return 0, err
	}

	fxRate := s.fxRates.Rate(ctx)
	now := s.clock.Now()
	updated := 0
	for i := range items {
		item := &items[i]
		item.MarkupType = domain.MarkupPercentage
		item.MarkupValue = req.MarkupPercent
		item.Rate = domain.LocalRate(item.ProviderRate, fxRate, item.MarkupType, item.MarkupValue)
		item.UpdatedAt = now
		if err := s.repo.Update(ctx, s.db, item); err != nil {
			s.log.Warn("bulk markup update failed",
				zap.String("provider", item.Provider),
				zap.String("provider_service_id", item.ProviderServiceID),
				zap.Error(err),
			)
			continue
		}
		updated++
	}
	return updated, nil
}

func (s *Service) toResponse(svc *domain.Service) domain.Response {
	return domain.Response{
		ID:                snowflake.ID(svc.ID).String(),
		Provider:          svc.Provider,
		ProviderServiceID: svc.ProviderServiceID,
		Name:              svc.Name,
		Description:       svc.Description,
		Platform:          svc.Platform,
		Kind:              svc.Kind,
		Rate:              svc.Rate,
		MarkupType:        svc.MarkupType,
		MarkupValue:       svc.MarkupValue,
		Min:               svc.Min,
		Max:               svc.Max,
		Dripfeed:          svc.Dripfeed,
		Refill:            svc.Refill,
		Cancel:            svc.Cancel,
		Status:            svc.Status,
		LastSyncAt:        svc.LastSyncAt,
	}
}
