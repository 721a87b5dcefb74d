package domain

import (
	"context"
	"time"
)

// Setting is a free-form admin key/value row. Known keys include
// currency_mode and markup_percentage; the schema only enforces key
// uniqueness.
type Setting struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"column:key;type:text;not null;uniqueIndex:ux_settings_key"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Setting) TableName() string { return "settings" }

// KeyMarkupPercentage seeds the markup of newly imported catalog rows.
const KeyMarkupPercentage = "markup_percentage"

type Repository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) ([]Setting, error)
}
