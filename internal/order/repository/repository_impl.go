package repository

import (
	"context"

	"github.com/viralzap/viralzap/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders
		 (id, user_id, service_id, provider, provider_order_id, link, quantity,
		  charge, cost, status, status_note, start_count, remains, sync_attempts,
		  last_status_check, profit, refill_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.UserID,
		order.ServiceID,
		order.Provider,
		order.ProviderOrderID,
		order.Link,
		order.Quantity,
		order.Charge,
		order.Cost,
		order.Status,
		order.StatusNote,
		order.StartCount,
		order.Remains,
		order.SyncAttempts,
		order.LastStatusCheck,
		order.Profit,
		order.RefillID,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET provider_order_id = ?, charge = ?, cost = ?, status = ?, status_note = ?,
		     start_count = ?, remains = ?, sync_attempts = ?, last_status_check = ?,
		     profit = ?, refill_id = ?, updated_at = ?
		 WHERE id = ?`,
		order.ProviderOrderID,
		order.Charge,
		order.Cost,
		order.Status,
		order.StatusNote,
		order.StartCount,
		order.Remains,
		order.SyncAttempts,
		order.LastStatusCheck,
		order.Profit,
		order.RefillID,
		order.UpdatedAt,
		order.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM orders WHERE id = ?`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Order, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Order{})

	if filter.UserID != 0 {
		stmt = stmt.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	var items []domain.Order
	err := stmt.Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) FindReconcilable(ctx context.Context, db *gorm.DB, limit int) ([]domain.Order, error) {
	var items []domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM orders
		 WHERE status IN (?, ?, ?) AND provider_order_id IS NOT NULL
		 ORDER BY created_at DESC
		 LIMIT ?`,
		domain.StatusPending,
		domain.StatusProcessing,
		domain.StatusInProgress,
		limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
