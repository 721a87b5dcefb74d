package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	Update(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Order, int64, error)

	// FindReconcilable returns up to limit open orders that carry an
	// upstream id, newest first.
	FindReconcilable(ctx context.Context, db *gorm.DB, limit int) ([]Order, error)
}
