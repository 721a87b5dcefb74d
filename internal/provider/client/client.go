package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/viralzap/viralzap/internal/provider/domain"
)

const maxResponseBytes = 8 << 20

// New builds a panel client for one endpoint/key pair.
func New(endpoint, key string) domain.Client {
	return &httpClient{
		endpoint: strings.TrimSpace(endpoint),
		key:      strings.TrimSpace(key),
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// NewFactory adapts New to the gateway's factory signature.
func NewFactory() domain.ClientFactory {
	return New
}

type httpClient struct {
	endpoint string
	key      string
	client   *http.Client
}

func (c *httpClient) Services(ctx context.Context) ([]domain.RemoteService, error) {
	body, err := c.do(ctx, url.Values{"action": {"services"}})
	if err != nil {
		return nil, err
	}

	var services []domain.RemoteService
	if err := json.Unmarshal(body, &services); err != nil {
		// Some panels answer {"error":"..."} instead of an array.
		if apiErr := decodeInlineError(body); apiErr != nil {
			return nil, apiErr
		}
		return nil, fmt.Errorf("decode services: %w", err)
	}
	return services, nil
}

func (c *httpClient) AddOrder(ctx context.Context, req domain.AddOrderRequest) (domain.AddOrderResponse, error) {
	values := url.Values{
		"action":   {"add"},
		"service":  {req.Service},
		"link":     {req.Link},
		"quantity": {strconv.Itoa(req.Quantity)},
	}
	if req.Runs > 0 {
		values.Set("runs", strconv.Itoa(req.Runs))
		values.Set("interval", strconv.Itoa(req.Interval))
	}

	var resp domain.AddOrderResponse
	if err := c.doJSON(ctx, values, &resp); err != nil {
		return domain.AddOrderResponse{}, err
	}
	return resp, nil
}

func (c *httpClient) OrderStatus(ctx context.Context, orderID string) (domain.StatusResponse, error) {
	var resp domain.StatusResponse
	err := c.doJSON(ctx, url.Values{
		"action": {"status"},
		"order":  {orderID},
	}, &resp)
	if err != nil {
		return domain.StatusResponse{}, err
	}
	if resp.Error != "" {
		return domain.StatusResponse{}, &domain.APIError{Message: resp.Error}
	}
	return resp, nil
}

func (c *httpClient) MultiOrderStatus(ctx context.Context, orderIDs []string) (map[string]domain.StatusResponse, error) {
	var resp map[string]domain.StatusResponse
	err := c.doJSON(ctx, url.Values{
		"action": {"status"},
		"orders": {strings.Join(orderIDs, ",")},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *httpClient) Refill(ctx context.Context, orderID string) (domain.RefillResponse, error) {
	var resp domain.RefillResponse
	err := c.doJSON(ctx, url.Values{
		"action": {"refill"},
		"order":  {orderID},
	}, &resp)
	if err != nil {
		return domain.RefillResponse{}, err
	}
	if resp.Error != "" {
		return domain.RefillResponse{}, &domain.APIError{Message: resp.Error}
	}
	return resp, nil
}

func (c *httpClient) MultiRefill(ctx context.Context, orderIDs []string) ([]domain.MultiRefillResponse, error) {
	body, err := c.do(ctx, url.Values{
		"action": {"refill"},
		"orders": {strings.Join(orderIDs, ",")},
	})
	if err != nil {
		return nil, err
	}

	var resp []domain.MultiRefillResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if apiErr := decodeInlineError(body); apiErr != nil {
			return nil, apiErr
		}
		return nil, fmt.Errorf("decode refill: %w", err)
	}
	return resp, nil
}

func (c *httpClient) RefillStatus(ctx context.Context, refillID string) (domain.RefillStatusResponse, error) {
	var resp domain.RefillStatusResponse
	err := c.doJSON(ctx, url.Values{
		"action": {"refill_status"},
		"refill": {refillID},
	}, &resp)
	if err != nil {
		return domain.RefillStatusResponse{}, err
	}
	if resp.Error != "" {
		return domain.RefillStatusResponse{}, &domain.APIError{Message: resp.Error}
	}
	return resp, nil
}

func (c *httpClient) Cancel(ctx context.Context, orderIDs []string) ([]domain.CancelResponse, error) {
	body, err := c.do(ctx, url.Values{
		"action": {"cancel"},
		"orders": {strings.Join(orderIDs, ",")},
	})
	if err != nil {
		return nil, err
	}

	var resp []domain.CancelResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if apiErr := decodeInlineError(body); apiErr != nil {
			return nil, apiErr
		}
		return nil, fmt.Errorf("decode cancel: %w", err)
	}
	return resp, nil
}

func (c *httpClient) Balance(ctx context.Context) (domain.BalanceResponse, error) {
	var resp domain.BalanceResponse
	if err := c.doJSON(ctx, url.Values{"action": {"balance"}}, &resp); err != nil {
		return domain.BalanceResponse{}, err
	}
	if resp.Error != "" {
		return domain.BalanceResponse{}, &domain.APIError{Message: resp.Error}
	}
	return resp, nil
}

func (c *httpClient) doJSON(ctx context.Context, values url.Values, out any) error {
	body, err := c.do(ctx, values)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		if apiErr := decodeInlineError(body); apiErr != nil {
			return apiErr
		}
		return fmt.Errorf("decode %s: %w", values.Get("action"), err)
	}
	return nil
}

func (c *httpClient) do(ctx context.Context, values url.Values) ([]byte, error) {
	values.Set("key", c.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("panel returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func decodeInlineError(body []byte) *domain.APIError {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	if strings.TrimSpace(payload.Error) == "" {
		return nil
	}
	return &domain.APIError{Message: payload.Error}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
