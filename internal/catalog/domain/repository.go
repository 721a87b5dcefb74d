package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByProviderKey(ctx context.Context, db *gorm.DB, provider, providerServiceID string) (*Service, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Service, error)
	Insert(ctx context.Context, db *gorm.DB, svc *Service) error
	Update(ctx context.Context, db *gorm.DB, svc *Service) error
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Service, int64, error)
	FindForMarkup(ctx context.Context, db *gorm.DB, provider, platform string) ([]Service, error)
}
