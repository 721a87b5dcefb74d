package repository

import (
	"context"

	"github.com/viralzap/viralzap/internal/exchangerate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, pair string) (*domain.ExchangeRate, error) {
	var rate domain.ExchangeRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, pair, rate, source, updated_at FROM exchange_rates WHERE pair = ?`,
		pair,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, rate *domain.ExchangeRate) error {
	res := db.WithContext(ctx).Exec(
		`UPDATE exchange_rates SET rate = ?, source = ?, updated_at = ? WHERE pair = ?`,
		rate.Rate,
		rate.Source,
		rate.UpdatedAt,
		rate.Pair,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO exchange_rates (id, pair, rate, source, updated_at) VALUES (?, ?, ?, ?, ?)`,
		rate.ID,
		rate.Pair,
		rate.Rate,
		rate.Source,
		rate.UpdatedAt,
	).Error
}
