package domain

import (
	"context"
	"time"
)

type OrderService interface {
	Place(ctx context.Context, req PlaceRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)

	// SyncAllStatuses reconciles a bounded batch of open orders against
	// their providers and returns how many were updated.
	SyncAllStatuses(ctx context.Context) (int, error)

	SyncStatus(ctx context.Context, id string) (*Response, error)
	RequestRefill(ctx context.Context, id string) (*Response, error)
	Cancel(ctx context.Context, id string) (*Response, error)
}

type PlaceRequest struct {
	UserID    int64  `json:"user_id"`
	ServiceID string `json:"service_id"`
	Link      string `json:"link"`
	Quantity  int    `json:"quantity"`
	Runs      int    `json:"runs"`
	Interval  int    `json:"interval"`
}

type ListRequest struct {
	UserID   int64
	Status   string
	Page     int
	PageSize int
}

type ListResponse struct {
	Items    []Response `json:"items"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

type Response struct {
	ID              string     `json:"id"`
	ServiceID       string     `json:"service_id"`
	Provider        string     `json:"provider"`
	ProviderOrderID *string    `json:"provider_order_id,omitempty"`
	Link            string     `json:"link"`
	Quantity        int        `json:"quantity"`
	Charge          float64    `json:"charge"`
	Status          string     `json:"status"`
	StatusNote      string     `json:"status_note,omitempty"`
	StartCount      int        `json:"start_count"`
	Remains         int        `json:"remains"`
	SyncAttempts    int        `json:"sync_attempts"`
	LastStatusCheck *time.Time `json:"last_status_check,omitempty"`
	Profit          *float64   `json:"profit,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
