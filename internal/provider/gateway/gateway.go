package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/viralzap/viralzap/internal/provider/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Factory     domain.ClientFactory
	Credentials domain.CredentialSource
}

type Gateway struct {
	log         *zap.Logger
	factory     domain.ClientFactory
	credentials domain.CredentialSource
}

func New(p Params) domain.Gateway {
	return &Gateway{
		log:         p.Log.Named("provider.gateway"),
		factory:     p.Factory,
		credentials: p.Credentials,
	}
}

// client resolves the provider id to a live panel client. Credentials are read
// on every call so a key saved in the admin panel is used immediately.
func (g *Gateway) client(ctx context.Context, provider string) (domain.Client, error) {
	if !domain.IsKnownProvider(provider) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, provider)
	}

	creds, err := g.credentials.ActiveClientCredentials(ctx)
	if err != nil {
		return nil, err
	}
	for _, cred := range creds {
		if cred.Provider == provider {
			return g.factory(cred.Endpoint, cred.Key), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotConfigured, provider)
}

func (g *Gateway) ListServices(ctx context.Context, provider string) domain.ServiceListResult {
	cli, err := g.client(ctx, provider)
	if err != nil {
		return domain.ServiceListResult{Provider: provider, Err: err.Error()}
	}

	services, err := cli.Services(ctx)
	if err != nil {
		g.log.Warn("service list failed",
			zap.String("provider", provider),
			zap.Error(err),
		)
		return domain.ServiceListResult{Provider: provider, Err: err.Error()}
	}
	return domain.ServiceListResult{Provider: provider, Services: services}
}

func (g *Gateway) CreateOrder(ctx context.Context, provider string, req domain.AddOrderRequest) domain.OrderResult {
	cli, err := g.client(ctx, provider)
	if err != nil {
		return domain.OrderResult{Error: err.Error()}
	}

	resp, err := cli.AddOrder(ctx, req)
	if err != nil {
		return domain.OrderResult{Error: err.Error()}
	}
	if resp.Error != "" {
		return domain.OrderResult{Error: resp.Error}
	}
	orderID := strings.TrimSpace(resp.Order.String())
	if orderID == "" || orderID == "0" {
		return domain.OrderResult{Error: "panel did not return an order id"}
	}
	return domain.OrderResult{Success: true, OrderID: orderID}
}

func (g *Gateway) OrderStatus(ctx context.Context, provider, orderID string) domain.StatusResult {
	cli, err := g.client(ctx, provider)
	if err != nil {
		return domain.StatusResult{Error: err.Error()}
	}

	resp, err := cli.OrderStatus(ctx, orderID)
	if err != nil {
		return domain.StatusResult{Error: err.Error()}
	}
	return domain.StatusResult{Success: true, Status: resp}
}

func (g *Gateway) RequestRefill(ctx context.Context, provider, orderID string) domain.RefillResult {
	cli, err := g.client(ctx, provider)
	if err != nil {
		return domain.RefillResult{Error: err.Error()}
	}

	resp, err := cli.Refill(ctx, orderID)
	if err != nil {
		return domain.RefillResult{Error: err.Error()}
	}
	return domain.RefillResult{Success: true, RefillID: resp.Refill.String()}
}

func (g *Gateway) CancelOrder(ctx context.Context, provider, orderID string) domain.CancelResult {
	cli, err := g.client(ctx, provider)
	if err != nil {
		return domain.CancelResult{Error: err.Error()}
	}

	resps, err := cli.Cancel(ctx, []string{orderID})
	if err != nil {
		return domain.CancelResult{Error: err.Error()}
	}
	for _, resp := range resps {
		if resp.Order.String() != orderID {
			continue
		}
		// cancel is either 1 or {"error": "..."}
		raw := strings.TrimSpace(string(resp.Cancel))
		if strings.HasPrefix(raw, "{") {
			return domain.CancelResult{Error: cancelError(raw)}
		}
		return domain.CancelResult{Success: true}
	}
	return domain.CancelResult{Error: "panel did not acknowledge the cancellation"}
}

func (g *Gateway) TestAllConnections(ctx context.Context) map[string]bool {
	results := make(map[string]bool, 2)
	for _, provider := range domain.KnownProviders() {
		cli, err := g.client(ctx, provider)
		if err != nil {
			continue
		}
		_, err = cli.Balance(ctx)
		results[provider] = err == nil
	}
	return results
}

func (g *Gateway) Balances(ctx context.Context) []domain.BalanceSnapshot {
	var snapshots []domain.BalanceSnapshot
	for _, provider := range domain.KnownProviders() {
		cli, err := g.client(ctx, provider)
		if err != nil {
			continue
		}
		resp, err := cli.Balance(ctx)
		if err != nil {
			snapshots = append(snapshots, domain.BalanceSnapshot{Provider: provider, Err: err.Error()})
			continue
		}
		snapshots = append(snapshots, domain.BalanceSnapshot{
			Provider: provider,
			Balance:  resp.Balance.Float(),
			Currency: resp.Currency,
		})
	}
	return snapshots
}

func cancelError(raw string) string {
	msg := strings.TrimPrefix(raw, "{")
	msg = strings.TrimSuffix(msg, "}")
	msg = strings.Trim(msg, " \t\n\"")
	if idx := strings.Index(msg, ":"); idx >= 0 {
		msg = strings.Trim(msg[idx+1:], " \t\"")
	}
	if msg == "" {
		msg = "cancellation rejected"
	}
	return msg
}
