package repository

import (
	"context"

	"github.com/viralzap/viralzap/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByProviderKey(ctx context.Context, db *gorm.DB, provider, providerServiceID string) (*domain.Service, error) {
	var svc domain.Service
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM services WHERE provider = ? AND provider_service_id = ?`,
		provider,
		providerServiceID,
	).Scan(&svc).Error
	if err != nil {
		return nil, err
	}
	if svc.ID == 0 {
		return nil, nil
	}
	return &svc, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Service, error) {
	var svc domain.Service
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM services WHERE id = ?`,
		id,
	).Scan(&svc).Error
	if err != nil {
		return nil, err
	}
	if svc.ID == 0 {
		return nil, nil
	}
	return &svc, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, svc *domain.Service) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO services
		 (id, provider, provider_service_id, name, description, platform, kind,
		  provider_rate, rate, markup_type, markup_value, min, max,
		  dripfeed, refill, cancel, status, last_sync_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		svc.ID,
		svc.Provider,
		svc.ProviderServiceID,
		svc.Name,
		svc.Description,
		svc.Platform,
		svc.Kind,
		svc.ProviderRate,
		svc.Rate,
		svc.MarkupType,
		svc.MarkupValue,
		svc.Min,
		svc.Max,
		svc.Dripfeed,
		svc.Refill,
		svc.Cancel,
		svc.Status,
		svc.LastSyncAt,
		svc.CreatedAt,
		svc.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, svc *domain.Service) error {
	return db.WithContext(ctx).Exec(
		`UPDATE services
		 SET name = ?, description = ?, platform = ?, kind = ?,
		     provider_rate = ?, rate = ?, markup_type = ?, markup_value = ?,
		     min = ?, max = ?, dripfeed = ?, refill = ?, cancel = ?,
		     status = ?, last_sync_at = ?, updated_at = ?
		 WHERE id = ?`,
		svc.Name,
		svc.Description,
		svc.Platform,
		svc.Kind,
		svc.ProviderRate,
		svc.Rate,
		svc.MarkupType,
		svc.MarkupValue,
		svc.Min,
		svc.Max,
		svc.Dripfeed,
		svc.Refill,
		svc.Cancel,
		svc.Status,
		svc.LastSyncAt,
		svc.UpdatedAt,
		svc.ID,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Service, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Service{})

	if filter.Provider != "" {
		stmt = stmt.Where("provider = ?", filter.Provider)
	}
	if filter.Platform != "" {
		stmt = stmt.Where("platform = ?", filter.Platform)
	}
	if filter.Kind != "" {
		stmt = stmt.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	var items []domain.Service
	err := stmt.Order("platform ASC, kind ASC, name ASC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) FindForMarkup(ctx context.Context, db *gorm.DB, provider, platform string) ([]domain.Service, error) {
	stmt := db.WithContext(ctx).Model(&domain.Service{})
	if provider != "" {
		stmt = stmt.Where("provider = ?", provider)
	}
	if platform != "" {
		stmt = stmt.Where("platform = ?", platform)
	}

	var items []domain.Service
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
