package domain

import (
	"errors"
	"time"
)

// Credential is one provider's API key row. The raw key is only ever handed
// to the provider gateway; every read surface gets the masked form.
type Credential struct {
	ID                int64      `json:"id" gorm:"primaryKey"`
	Provider          string     `json:"provider" gorm:"type:text;not null;uniqueIndex:ux_api_credentials_provider"`
	APIKey            string     `json:"-" gorm:"column:api_key;type:text;not null"`
	Endpoint          string     `json:"endpoint" gorm:"type:text;not null"`
	Active            bool       `json:"active" gorm:"not null;default:true"`
	Balance           *float64   `json:"balance,omitempty"`
	BalanceCurrency   *string    `json:"balance_currency,omitempty" gorm:"type:text"`
	BalanceCheckedAt  *time.Time `json:"balance_checked_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Credential) TableName() string { return "api_credentials" }

var (
	ErrUnknownProvider = errors.New("unknown_provider")
	ErrInvalidKey      = errors.New("invalid_key")
	ErrInvalidEndpoint = errors.New("invalid_endpoint")
	ErrNotFound        = errors.New("not_found")
)
