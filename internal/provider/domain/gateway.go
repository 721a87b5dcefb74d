package domain

import "context"

// ClientCredential is the minimum a gateway needs to reach a panel. The
// credential domain owns the full row; this keeps the dependency one-way.
type ClientCredential struct {
	Provider string
	Endpoint string
	Key      string
}

// CredentialSource yields the currently active credentials. The gateway
// resolves it per call so credential edits take effect without a restart.
type CredentialSource interface {
	ActiveClientCredentials(ctx context.Context) ([]ClientCredential, error)
}

// ServiceListResult distinguishes "provider has zero services" from "the list
// call failed"; callers must branch on Err before trusting Services.
type ServiceListResult struct {
	Provider string
	Services []RemoteService
	Err      string
}

func (r ServiceListResult) OK() bool { return r.Err == "" }

type OrderResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type StatusResult struct {
	Success bool           `json:"success"`
	Status  StatusResponse `json:"status,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type RefillResult struct {
	Success  bool   `json:"success"`
	RefillID string `json:"refill_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

type CancelResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type BalanceSnapshot struct {
	Provider string  `json:"provider"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
	Err      string  `json:"error,omitempty"`
}

// Gateway dispatches logical operations to the panel configured for a
// provider id. A missing or inactive credential is reported inside the result
// value; the gateway itself only errors on credential-store failures.
type Gateway interface {
	ListServices(ctx context.Context, provider string) ServiceListResult
	CreateOrder(ctx context.Context, provider string, req AddOrderRequest) OrderResult
	OrderStatus(ctx context.Context, provider, orderID string) StatusResult
	RequestRefill(ctx context.Context, provider, orderID string) RefillResult
	CancelOrder(ctx context.Context, provider, orderID string) CancelResult
	TestAllConnections(ctx context.Context) map[string]bool
	Balances(ctx context.Context) []BalanceSnapshot
}
