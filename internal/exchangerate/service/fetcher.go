package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/viralzap/viralzap/internal/config"
	"github.com/viralzap/viralzap/internal/exchangerate/domain"
)

type remoteFetcher struct {
	url    string
	client *http.Client
}

// NewFetcher builds the remote quote fetcher; the endpoint answers
// {"rates":{"BRL":<rate>}} for a USD base.
func NewFetcher(cfg config.Config) domain.Fetcher {
	return &remoteFetcher{
		url:    cfg.ExchangeRateURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func (f *remoteFetcher) Fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return 0, fmt.Errorf("rate endpoint returned status %d", resp.StatusCode)
	}

	var payload ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode rates: %w", err)
	}

	rate, ok := payload.Rates["BRL"]
	if !ok || rate <= 0 {
		return 0, errors.New("rate endpoint did not return BRL")
	}
	return rate, nil
}
