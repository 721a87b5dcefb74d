package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/viralzap/viralzap/internal/catalog/domain"
	"github.com/viralzap/viralzap/internal/clock"
	"github.com/viralzap/viralzap/internal/order/domain"
	providerdomain "github.com/viralzap/viralzap/internal/provider/domain"
	walletdomain "github.com/viralzap/viralzap/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
	Gateway     providerdomain.Gateway
	Wallet      walletdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	catalogRepo catalogdomain.Repository
	gateway     providerdomain.Gateway
	wallet      walletdomain.Service
}

func New(p Params) domain.OrderService {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
		gateway:     p.Gateway,
		wallet:      p.Wallet,
	}
}

// Place charges the user's wallet and relays the order to the catalog
// service's provider. A rejected relay marks the order as error and refunds
// the charge.
func (s *Service) Place(ctx context.Context, req domain.PlaceRequest) (*domain.Response, error) {
	serviceID, err := snowflake.ParseString(strings.TrimSpace(req.ServiceID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	link := strings.TrimSpace(req.Link)
	if link == "" {
		return nil, domain.ErrInvalidLink
	}

	svc, err := s.catalogRepo.FindByID(ctx, s.db, serviceID.Int64())
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}
	if svc.Status != catalogdomain.StatusActive {
		return nil, domain.ErrServiceInactive
	}
	if req.Quantity < svc.Min || req.Quantity > svc.Max {
		return nil, domain.ErrQuantityOutOfRange
	}

	now := s.clock.Now()
	charge := svc.Rate * float64(req.Quantity) / 1000
	cost := svc.ProviderRate * float64(req.Quantity) / 1000

	order := &domain.Order{
		ID:        s.genID.Generate().Int64(),
		UserID:    req.UserID,
		ServiceID: svc.ID,
		Provider:  svc.Provider,
		Link:      link,
		Quantity:  req.Quantity,
		Charge:    charge,
		Cost:      cost,
		Status:    domain.StatusPending,
		Remains:   req.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.wallet.Debit(ctx, req.UserID, charge, order.ID, "order payment"); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, s.db, order); err != nil {
		// The charge already went through; hand the money back.
		if creditErr := s.wallet.Credit(ctx, req.UserID, charge, order.ID, "order insert failed"); creditErr != nil {
			s.log.Error("refund after failed insert also failed",
				zap.Int64("order_id", order.ID),
				zap.Error(creditErr),
			)
		}
		return nil, err
	}

	result := s.gateway.CreateOrder(ctx, svc.Provider, providerdomain.AddOrderRequest{
		Service:  svc.ProviderServiceID,
		Link:     link,
		Quantity: req.Quantity,
		Runs:     req.Runs,
		Interval: req.Interval,
	})

	if !result.Success {
		order.Status = domain.StatusError
		order.StatusNote = result.Error
		order.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, s.db, order); err != nil {
			s.log.Error("failed to record rejected order", zap.Int64("order_id", order.ID), zap.Error(err))
		}
		if err := s.wallet.Credit(ctx, req.UserID, charge, order.ID, "order rejected by provider"); err != nil {
			s.log.Error("refund for rejected order failed", zap.Int64("order_id", order.ID), zap.Error(err))
		}
		resp := s.toResponse(order)
		return &resp, nil
	}

	order.ProviderOrderID = &result.OrderID
	order.Status = domain.StatusProcessing
	order.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}

	s.log.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.String("provider", order.Provider),
		zap.String("provider_order_id", result.OrderID),
	)
	resp := s.toResponse(order)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	order, err := s.findByPublicID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(order)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	filter := req
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

func (s *Service) findByPublicID(ctx context.Context, id string) (*domain.Order, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID.Int64())
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (s *Service) toResponse(order *domain.Order) domain.Response {
	return domain.Response{
		ID:              snowflake.ID(order.ID).String(),
		ServiceID:       snowflake.ID(order.ServiceID).String(),
		Provider:        order.Provider,
		ProviderOrderID: order.ProviderOrderID,
		Link:            order.Link,
		Quantity:        order.Quantity,
		Charge:          order.Charge,
		Status:          order.Status,
		StatusNote:      order.StatusNote,
		StartCount:      order.StartCount,
		Remains:         order.Remains,
		SyncAttempts:    order.SyncAttempts,
		LastStatusCheck: order.LastStatusCheck,
		Profit:          order.Profit,
		CreatedAt:       order.CreatedAt,
	}
}
