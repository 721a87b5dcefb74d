package repository

import (
	"context"

	"github.com/viralzap/viralzap/internal/credential/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cred *domain.Credential) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO api_credentials (id, provider, api_key, endpoint, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cred.ID,
		cred.Provider,
		cred.APIKey,
		cred.Endpoint,
		cred.Active,
		cred.CreatedAt,
		cred.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, cred *domain.Credential) error {
	return db.WithContext(ctx).Exec(
		`UPDATE api_credentials
		 SET api_key = ?, endpoint = ?, active = ?, updated_at = ?
		 WHERE provider = ?`,
		cred.APIKey,
		cred.Endpoint,
		cred.Active,
		cred.UpdatedAt,
		cred.Provider,
	).Error
}

func (r *repo) FindByProvider(ctx context.Context, db *gorm.DB, provider string) (*domain.Credential, error) {
	var cred domain.Credential
	err := db.WithContext(ctx).Raw(
		`SELECT id, provider, api_key, endpoint, active, balance, balance_currency, balance_checked_at, created_at, updated_at
		 FROM api_credentials WHERE provider = ?`,
		provider,
	).Scan(&cred).Error
	if err != nil {
		return nil, err
	}
	if cred.ID == 0 {
		return nil, nil
	}
	return &cred, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Credential, error) {
	var items []domain.Credential
	err := db.WithContext(ctx).Raw(
		`SELECT id, provider, api_key, endpoint, active, balance, balance_currency, balance_checked_at, created_at, updated_at
		 FROM api_credentials ORDER BY provider ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB) ([]domain.Credential, error) {
	var items []domain.Credential
	err := db.WithContext(ctx).Raw(
		`SELECT id, provider, api_key, endpoint, active, balance, balance_currency, balance_checked_at, created_at, updated_at
		 FROM api_credentials WHERE active = ? ORDER BY provider ASC`,
		true,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateActive(ctx context.Context, db *gorm.DB, provider string, active bool) error {
	return db.WithContext(ctx).Exec(
		`UPDATE api_credentials SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE provider = ?`,
		active,
		provider,
	).Error
}

func (r *repo) UpdateBalance(ctx context.Context, db *gorm.DB, cred *domain.Credential) error {
	return db.WithContext(ctx).Exec(
		`UPDATE api_credentials
		 SET balance = ?, balance_currency = ?, balance_checked_at = ?, updated_at = ?
		 WHERE provider = ?`,
		cred.Balance,
		cred.BalanceCurrency,
		cred.BalanceCheckedAt,
		cred.UpdatedAt,
		cred.Provider,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, provider string) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM api_credentials WHERE provider = ?`,
		provider,
	).Error
}
