package domain

import (
	"context"
	"errors"
	"time"
)

const (
	// FallbackRate is returned when no fresh cache exists and the remote
	// quote endpoint cannot be reached.
	FallbackRate = 5.50

	// CacheTTL is how long a fetched rate stays authoritative.
	CacheTTL = time.Hour

	SourceManual = "manual"
	SourceAPI    = "api"

	PairUSDBRL = "usd_brl"
)

// ExchangeRate is a singleton row per currency pair, overwritten in place.
type ExchangeRate struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Pair      string    `json:"pair" gorm:"type:text;not null;uniqueIndex:ux_exchange_rates_pair"`
	Rate      float64   `json:"rate" gorm:"not null"`
	Source    string    `json:"source" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ExchangeRate) TableName() string { return "exchange_rates" }

var (
	ErrInvalidRate = errors.New("invalid_rate")
)

type Service interface {
	// Rate resolves the USD→BRL rate: fresh cache, then remote endpoint,
	// then FallbackRate.
	Rate(ctx context.Context) float64

	// Override pins the rate manually. Manual rates do not expire.
	Override(ctx context.Context, rate float64) (*ExchangeRate, error)

	// Current returns the stored row, nil when none was ever persisted.
	Current(ctx context.Context) (*ExchangeRate, error)
}

// Fetcher obtains a quote from the remote rate endpoint.
type Fetcher interface {
	Fetch(ctx context.Context) (float64, error)
}
