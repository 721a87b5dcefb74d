package service

import (
	"context"
	"errors"

	"github.com/viralzap/viralzap/internal/order/domain"
	"go.uber.org/zap"
)

// SyncAllStatuses polls up to ReconcileBatchSize open orders, newest first,
// and applies the provider's view. A failing order is retried on the next run
// until it ages past StaleAge, at which point it is marked as an error. The
// batch never stops on a single order.
func (s *Service) SyncAllStatuses(ctx context.Context) (int, error) {
	orders, err := s.repo.FindReconcilable(ctx, s.db, domain.ReconcileBatchSize)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range orders {
		order := &orders[i]
		if err := s.reconcile(ctx, order); err != nil {
			s.escalateOrRetry(ctx, order, err)
			continue
		}
		updated++
	}

	s.log.Info("order reconciliation finished",
		zap.Int("batch", len(orders)),
		zap.Int("updated", updated),
	)
	return updated, nil
}

// reconcile applies one upstream status reply to the stored order.
func (s *Service) reconcile(ctx context.Context, order *domain.Order) error {
	if domain.IsTerminal(order.Status) {
		return nil
	}
	if order.ProviderOrderID == nil {
		return domain.ErrNoProviderOrder
	}

	result := s.gateway.OrderStatus(ctx, order.Provider, *order.ProviderOrderID)
	if !result.Success {
		return errors.New(result.Error)
	}

	now := s.clock.Now()
	status := result.Status

	order.Status = domain.MapProviderStatus(status.Status)
	if raw := status.StartCount.String(); raw != "" {
		order.StartCount = status.StartCount.Int()
	}
	if raw := status.Remains.String(); raw != "" {
		order.Remains = status.Remains.Int()
	}
	order.LastStatusCheck = &now
	order.SyncAttempts++

	if order.Status == domain.StatusCompleted {
		if cost := status.Charge.Float(); cost > 0 {
			order.Cost = cost
		}
		profit := order.Charge - order.Cost
		order.Profit = &profit
	}

	order.UpdatedAt = now
	return s.repo.Update(ctx, s.db, order)
}

// escalateOrRetry leaves a young order for the next run and fails an old one.
func (s *Service) escalateOrRetry(ctx context.Context, order *domain.Order, cause error) {
	now := s.clock.Now()
	order.SyncAttempts++
	order.UpdatedAt = now

	if now.Sub(order.CreatedAt) > domain.StaleAge {
		order.Status = domain.StatusError
		order.StatusNote = domain.StaleOrderMessage
		s.log.Warn("order escalated to error",
			zap.Int64("order_id", order.ID),
			zap.Int("sync_attempts", order.SyncAttempts),
			zap.Error(cause),
		)
	} else {
		s.log.Warn("order reconciliation failed, will retry",
			zap.Int64("order_id", order.ID),
			zap.Int("sync_attempts", order.SyncAttempts),
			zap.Error(cause),
		)
	}

	if err := s.repo.Update(ctx, s.db, order); err != nil {
		s.log.Error("failed to persist reconciliation outcome",
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)
	}
}

func (s *Service) SyncStatus(ctx context.Context, id string) (*domain.Response, error) {
	order, err := s.findByPublicID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.IsTerminal(order.Status) {
		if err := s.reconcile(ctx, order); err != nil {
			return nil, err
		}
	}

	resp := s.toResponse(order)
	return &resp, nil
}

// RequestRefill asks the provider to top an order back up. Only services
// flagged refill-capable qualify, and only once the order finished
// (completed or partial).
func (s *Service) RequestRefill(ctx context.Context, id string) (*domain.Response, error) {
	order, err := s.findByPublicID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.ProviderOrderID == nil {
		return nil, domain.ErrNoProviderOrder
	}

	svc, err := s.catalogRepo.FindByID(ctx, s.db, order.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc == nil || !svc.Refill {
		return nil, domain.ErrRefillUnsupported
	}
	if order.Status != domain.StatusCompleted && order.Status != domain.StatusPartial {
		return nil, domain.ErrRefillNotReady
	}

	result := s.gateway.RequestRefill(ctx, order.Provider, *order.ProviderOrderID)
	if !result.Success {
		return nil, errors.New(result.Error)
	}

	order.RefillID = &result.RefillID
	order.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}

	resp := s.toResponse(order)
	return &resp, nil
}

// Cancel stops a non-terminal order and credits back the undelivered part.
// An order the provider never accepted is canceled locally with a full
// refund; an accepted order is canceled upstream first and refunded in
// proportion to what was not delivered.
func (s *Service) Cancel(ctx context.Context, id string) (*domain.Response, error) {
	order, err := s.findByPublicID(ctx, id)
	if err != nil {
		return nil, err
	}
	if domain.IsTerminal(order.Status) {
		return nil, domain.ErrAlreadyTerminal
	}

	svc, err := s.catalogRepo.FindByID(ctx, s.db, order.ServiceID)
	if err != nil {
		return nil, err
	}

	if order.ProviderOrderID != nil {
		if svc == nil || !svc.Cancel {
			return nil, domain.ErrCancelUnsupported
		}
		result := s.gateway.CancelOrder(ctx, order.Provider, *order.ProviderOrderID)
		if !result.Success {
			return nil, errors.New(result.Error)
		}
	}

	refund := s.refundAmount(order)
	now := s.clock.Now()
	if refund > 0 {
		if err := s.wallet.Credit(ctx, order.UserID, refund, order.ID, "order canceled"); err != nil {
			return nil, err
		}
		order.Status = domain.StatusRefunded
	} else {
		order.Status = domain.StatusCanceled
	}
	order.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}

	s.log.Info("order canceled",
		zap.Int64("order_id", order.ID),
		zap.Float64("refund", refund),
	)
	resp := s.toResponse(order)
	return &resp, nil
}

// refundAmount prorates the charge by the undelivered remainder. An order
// the provider never accepted refunds in full.
func (s *Service) refundAmount(order *domain.Order) float64 {
	if order.ProviderOrderID == nil {
		return order.Charge
	}
	if order.Quantity <= 0 || order.Remains <= 0 {
		return 0
	}
	if order.Remains >= order.Quantity {
		return order.Charge
	}
	return order.Charge * float64(order.Remains) / float64(order.Quantity)
}
