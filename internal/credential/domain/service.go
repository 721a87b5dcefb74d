package domain

import (
	"context"
	"time"

	providerdomain "github.com/viralzap/viralzap/internal/provider/domain"
)

type Service interface {
	providerdomain.CredentialSource

	Save(ctx context.Context, req SaveRequest) (*Response, error)
	Toggle(ctx context.Context, provider string, active bool) (*Response, error)
	Remove(ctx context.Context, provider string) error
	List(ctx context.Context) ([]Response, error)
	StoreBalance(ctx context.Context, provider string, balance float64, currency string) error
}

type SaveRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
}

// Response never carries the raw key; MaskedKey is prefix+suffix only.
type Response struct {
	ID               string     `json:"id"`
	Provider         string     `json:"provider"`
	MaskedKey        string     `json:"masked_key"`
	Endpoint         string     `json:"endpoint"`
	Active           bool       `json:"active"`
	Balance          *float64   `json:"balance,omitempty"`
	BalanceCurrency  *string    `json:"balance_currency,omitempty"`
	BalanceCheckedAt *time.Time `json:"balance_checked_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
