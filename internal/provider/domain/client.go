package domain

import "context"

// Client speaks one panel's HTTP API: a form-encoded POST per action with a
// JSON reply. Transport failures, non-2xx statuses and unparseable bodies are
// returned as errors; in-band {"error": ...} payloads become *APIError.
type Client interface {
	Services(ctx context.Context) ([]RemoteService, error)
	AddOrder(ctx context.Context, req AddOrderRequest) (AddOrderResponse, error)
	OrderStatus(ctx context.Context, orderID string) (StatusResponse, error)
	MultiOrderStatus(ctx context.Context, orderIDs []string) (map[string]StatusResponse, error)
	Refill(ctx context.Context, orderID string) (RefillResponse, error)
	MultiRefill(ctx context.Context, orderIDs []string) ([]MultiRefillResponse, error)
	RefillStatus(ctx context.Context, refillID string) (RefillStatusResponse, error)
	Cancel(ctx context.Context, orderIDs []string) ([]CancelResponse, error)
	Balance(ctx context.Context) (BalanceResponse, error)
}

// ClientFactory builds a Client for a credential pair. Injected so tests can
// point the gateway at a fake panel.
type ClientFactory func(endpoint, key string) Client
