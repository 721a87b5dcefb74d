package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viralzap/viralzap/internal/config"
)

func TestFetcherParsesBRLRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rates":{"BRL":5.4321,"EUR":0.92}}`))
	}))
	defer srv.Close()

	fetcher := NewFetcher(config.Config{ExchangeRateURL: srv.URL})
	rate, err := fetcher.Fetch(context.Background())

	assert.NoError(t, err)
	assert.InDelta(t, 5.4321, rate, 1e-9)
}

func TestFetcherRejectsMissingBRL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates":{"EUR":0.92}}`))
	}))
	defer srv.Close()

	fetcher := NewFetcher(config.Config{ExchangeRateURL: srv.URL})
	_, err := fetcher.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetcherRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	fetcher := NewFetcher(config.Config{ExchangeRateURL: srv.URL})
	_, err := fetcher.Fetch(context.Background())
	assert.Error(t, err)
}
