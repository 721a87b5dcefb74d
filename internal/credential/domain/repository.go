package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, cred *Credential) error
	Update(ctx context.Context, db *gorm.DB, cred *Credential) error
	FindByProvider(ctx context.Context, db *gorm.DB, provider string) (*Credential, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]Credential, error)
	FindActive(ctx context.Context, db *gorm.DB) ([]Credential, error)
	UpdateActive(ctx context.Context, db *gorm.DB, provider string, active bool) error
	UpdateBalance(ctx context.Context, db *gorm.DB, cred *Credential) error
	Delete(ctx context.Context, db *gorm.DB, provider string) error
}
