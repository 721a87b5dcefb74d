package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Find(ctx context.Context, db *gorm.DB, pair string) (*ExchangeRate, error)
	Save(ctx context.Context, db *gorm.DB, rate *ExchangeRate) error
}
