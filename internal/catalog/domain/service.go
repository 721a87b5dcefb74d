package domain

import (
	"context"
	"time"
)

type CatalogService interface {
	// SyncAll imports every configured provider's full service list.
	SyncAll(ctx context.Context) (*SyncReport, error)

	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	BulkMarkup(ctx context.Context, req BulkMarkupRequest) (int, error)
}

// SyncReport aggregates one sync run. Errors holds at most the first five
// per-entry failures for display; Failed is the full count.
type SyncReport struct {
	Imported         int               `json:"imported"`
	Updated          int               `json:"updated"`
	Failed           int               `json:"failed"`
	Errors           []string          `json:"errors,omitempty"`
	ProviderFailures map[string]string `json:"provider_failures,omitempty"`
}

type ListRequest struct {
	Provider string
	Platform string
	Kind     string
	Status   string
	Search   string
	Page     int
	PageSize int
}

type ListResponse struct {
	Items    []Response `json:"items"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

type UpdateRequest struct {
	ID          string   `json:"id"`
	MarkupType  *string  `json:"markup_type"`
	MarkupValue *float64 `json:"markup_value"`
	Status      *string  `json:"status"`
}

// BulkMarkupRequest recomputes sell rates for every matching service using
// the given percentage markup. Empty filters match everything.
type BulkMarkupRequest struct {
	Provider      string  `json:"provider"`
	Platform      string  `json:"platform"`
	MarkupPercent float64 `json:"markup_percent"`
}

type Response struct {
	ID                string    `json:"id"`
	Provider          string    `json:"provider"`
	ProviderServiceID string    `json:"provider_service_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	Platform          string    `json:"platform"`
	Kind              string    `json:"kind"`
	Rate              float64   `json:"rate"`
	MarkupType        string    `json:"markup_type"`
	MarkupValue       float64   `json:"markup_value"`
	Min               int       `json:"min"`
	Max               int       `json:"max"`
	Dripfeed          bool      `json:"dripfeed"`
	Refill            bool      `json:"refill"`
	Cancel            bool      `json:"cancel"`
	Status            string    `json:"status"`
	LastSyncAt        time.Time `json:"last_sync_at"`
}
