package settings

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/viralzap/viralzap/internal/settings/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewRepository(db *gorm.DB, genID *snowflake.Node) domain.Repository {
	return &repository{db: db, genID: genID}
}

// The column is named `key`, a reserved word on mysql, so every query goes
// through the clause builders and lets gorm quote it per dialect.
func (r *repository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	var row domain.Setting
	err := r.db.WithContext(ctx).
		Where(map[string]interface{}{"key": key}).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repository) Set(ctx context.Context, key, value string) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&domain.Setting{}).
		Where(map[string]interface{}{"key": key}).
		Updates(map[string]interface{}{"value": value, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&domain.Setting{
		ID:        r.genID.Generate().Int64(),
		Key:       key,
		Value:     value,
		UpdatedAt: now,
	}).Error
}

func (r *repository) All(ctx context.Context) ([]domain.Setting, error) {
	var rows []domain.Setting
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
