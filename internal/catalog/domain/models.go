package domain

import (
	"errors"
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	MarkupPercentage = "percentage"
	MarkupFixed      = "fixed"

	PlatformOther = "Other"
	KindOther     = "Outros"
)

// Service is one resellable catalog entry. (Provider, ProviderServiceID) is
// the upsert key: syncing the same upstream entry twice updates the row in
// place. Rows are deactivated, never deleted, by the pipeline.
//
// MarkupValue stored here is authoritative for billing; the global
// markup_percentage setting only seeds newly imported rows.
type Service struct {
	ID                int64     `json:"id" gorm:"primaryKey"`
	Provider          string    `json:"provider" gorm:"type:text;not null;uniqueIndex:ux_services_provider_sid,priority:1"`
	ProviderServiceID string    `json:"provider_service_id" gorm:"type:text;not null;uniqueIndex:ux_services_provider_sid,priority:2"`
	Name              string    `json:"name" gorm:"type:text;not null"`
	Description       string    `json:"description" gorm:"type:text"`
	Platform          string    `json:"platform" gorm:"type:text;not null"`
	Kind              string    `json:"kind" gorm:"type:text;not null"`
	ProviderRate      float64   `json:"provider_rate" gorm:"not null"`
	Rate              float64   `json:"rate" gorm:"not null"`
	MarkupType        string    `json:"markup_type" gorm:"type:text;not null;default:percentage"`
	MarkupValue       float64   `json:"markup_value" gorm:"not null"`
	Min               int       `json:"min" gorm:"not null"`
	Max               int       `json:"max" gorm:"not null"`
	Dripfeed          bool      `json:"dripfeed" gorm:"not null;default:false"`
	Refill            bool      `json:"refill" gorm:"not null;default:false"`
	Cancel            bool      `json:"cancel" gorm:"not null;default:false"`
	Status            string    `json:"status" gorm:"type:text;not null;default:active"`
	LastSyncAt        time.Time `json:"last_sync_at"`
	CreatedAt         time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Service) TableName() string { return "services" }

var (
	ErrNotFound      = errors.New("not_found")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidMarkup = errors.New("invalid_markup")
	ErrInvalidStatus = errors.New("invalid_status")
)

// LocalRate converts a provider's USD quote (per 1000 units) into the BRL
// sell rate.
func LocalRate(providerRate, fxRate float64, markupType string, markupValue float64) float64 {
	base := providerRate * fxRate
	switch markupType {
	case MarkupFixed:
		return base + markupValue
	default:
		return base * (1 + markupValue/100)
	}
}
