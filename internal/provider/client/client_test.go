package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viralzap/viralzap/internal/provider/domain"
)

// panelServer records the last form the client posted and replies with a
// canned body.
func panelServer(t *testing.T, status int, body string) (*httptest.Server, *url.Values) {
	t.Helper()
	var lastForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		lastForm = r.PostForm
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &lastForm
}

func TestServicesSendsKeyAndAction(t *testing.T) {
	srv, form := panelServer(t, http.StatusOK, `[
		{"service": 42, "name": "Instagram Followers", "rate": "1.00", "min": "100", "max": 10000, "refill": 1, "cancel": "true"},
		{"service": "43", "name": "TikTok Likes", "rate": 0.5, "min": 10, "max": "50000", "refill": false}
	]`)

	c := New(srv.URL, "secret-key")
	services, err := c.Services(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "services", form.Get("action"))
	assert.Equal(t, "secret-key", form.Get("key"))
	if assert.Len(t, services, 2) {
		// Numeric and quoted spellings land on the same value.
		assert.Equal(t, "42", services[0].Service.String())
		assert.Equal(t, "43", services[1].Service.String())
		assert.InDelta(t, 1.00, services[0].Rate.Float(), 1e-9)
		assert.InDelta(t, 0.5, services[1].Rate.Float(), 1e-9)
		assert.Equal(t, 10000, services[0].Max.Int())
		assert.True(t, bool(services[0].Refill))
		assert.True(t, bool(services[0].Cancel))
		assert.False(t, bool(services[1].Refill))
	}
}

func TestServicesInlineError(t *testing.T) {
	srv, _ := panelServer(t, http.StatusOK, `{"error": "Invalid API key"}`)

	c := New(srv.URL, "bad-key")
	_, err := c.Services(context.Background())

	var apiErr *domain.APIError
	if assert.ErrorAs(t, err, &apiErr) {
		assert.Equal(t, "Invalid API key", apiErr.Message)
	}
}

func TestAddOrderEncodesFields(t *testing.T) {
	srv, form := panelServer(t, http.StatusOK, `{"order": 99999}`)

	c := New(srv.URL, "secret-key")
	resp, err := c.AddOrder(context.Background(), domain.AddOrderRequest{
		Service:  "42",
		Link:     "https://instagram.com/someone",
		Quantity: 1000,
	})

	assert.NoError(t, err)
	assert.Equal(t, "add", form.Get("action"))
	assert.Equal(t, "42", form.Get("service"))
	assert.Equal(t, "https://instagram.com/someone", form.Get("link"))
	assert.Equal(t, "1000", form.Get("quantity"))
	assert.Empty(t, form.Get("runs"), "dripfeed fields are only sent when requested")
	assert.Equal(t, "99999", resp.Order.String())
}

func TestAddOrderDripfeedFields(t *testing.T) {
	srv, form := panelServer(t, http.StatusOK, `{"order": "1"}`)

	c := New(srv.URL, "secret-key")
	_, err := c.AddOrder(context.Background(), domain.AddOrderRequest{
		Service:  "42",
		Link:     "https://instagram.com/someone",
		Quantity: 1000,
		Runs:     5,
		Interval: 30,
	})

	assert.NoError(t, err)
	assert.Equal(t, "5", form.Get("runs"))
	assert.Equal(t, "30", form.Get("interval"))
}

func TestOrderStatusParsesMixedFields(t *testing.T) {
	srv, form := panelServer(t, http.StatusOK,
		`{"charge": "0.27819", "start_count": 3572, "status": "Partial", "remains": "157", "currency": "USD"}`)

	c := New(srv.URL, "secret-key")
	resp, err := c.OrderStatus(context.Background(), "99999")

	assert.NoError(t, err)
	assert.Equal(t, "status", form.Get("action"))
	assert.Equal(t, "99999", form.Get("order"))
	assert.InDelta(t, 0.27819, resp.Charge.Float(), 1e-9)
	assert.Equal(t, 3572, resp.StartCount.Int())
	assert.Equal(t, "Partial", resp.Status)
	assert.Equal(t, 157, resp.Remains.Int())
}

func TestOrderStatusErrorField(t *testing.T) {
	srv, _ := panelServer(t, http.StatusOK, `{"error": "Incorrect order ID"}`)

	c := New(srv.URL, "secret-key")
	_, err := c.OrderStatus(context.Background(), "nope")

	var apiErr *domain.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestMultiOrderStatus(t *testing.T) {
	srv, form := panelServer(t, http.StatusOK, `{
		"1": {"charge": "0.27819", "status": "In progress", "remains": "10"},
		"2": {"error": "Incorrect order ID"}
	}`)

	c := New(srv.URL, "secret-key")
	resp, err := c.MultiOrderStatus(context.Background(), []string{"1", "2"})

	assert.NoError(t, err)
	assert.Equal(t, "1,2", form.Get("orders"))
	assert.Equal(t, "In progress", resp["1"].Status)
	assert.Equal(t, "Incorrect order ID", resp["2"].Error)
}

func TestRefillAndRefillStatus(t *testing.T) {
	srv, form := panelServer(t, http.StatusOK, `{"refill": "1"}`)
	c := New(srv.URL, "secret-key")

	resp, err := c.Refill(context.Background(), "99999")
	assert.NoError(t, err)
	assert.Equal(t, "refill", form.Get("action"))
	assert.Equal(t, "99999", form.Get("order"))
	assert.Equal(t, "1", resp.Refill.String())

	srv2, form2 := panelServer(t, http.StatusOK, `{"status": "Completed"}`)
	c2 := New(srv2.URL, "secret-key")
	status, err := c2.RefillStatus(context.Background(), "1")
	assert.NoError(t, err)
	assert.Equal(t, "refill_status", form2.Get("action"))
	assert.Equal(t, "1", form2.Get("refill"))
	assert.Equal(t, "Completed", status.Status)
}

func TestMultiRefill(t *testing.T) {
	srv, form := panelServer(t, http.StatusOK, `[
		{"order": 1, "refill": 1},
		{"order": 2, "refill": {"error": "Incorrect order ID"}}
	]`)

	c := New(srv.URL, "secret-key")
	resp, err := c.MultiRefill(context.Background(), []string{"1", "2"})

	assert.NoError(t, err)
	assert.Equal(t, "refill", form.Get("action"))
	assert.Equal(t, "1,2", form.Get("orders"))
	if assert.Len(t, resp, 2) {
		assert.JSONEq(t, `1`, string(resp[0].Refill))
		assert.JSONEq(t, `{"error": "Incorrect order ID"}`, string(resp[1].Refill))
	}
}

func TestCancelList(t *testing.T) {
	srv, form := panelServer(t, http.StatusOK, `[
		{"order": 9, "cancel": 1},
		{"order": 10, "cancel": {"error": "Incorrect order ID"}}
	]`)

	c := New(srv.URL, "secret-key")
	resp, err := c.Cancel(context.Background(), []string{"9", "10"})

	assert.NoError(t, err)
	assert.Equal(t, "cancel", form.Get("action"))
	assert.Equal(t, "9,10", form.Get("orders"))
	if assert.Len(t, resp, 2) {
		assert.Equal(t, "9", resp[0].Order.String())
		assert.JSONEq(t, `1`, string(resp[0].Cancel))
		assert.JSONEq(t, `{"error": "Incorrect order ID"}`, string(resp[1].Cancel))
	}
}

func TestBalance(t *testing.T) {
	srv, form := panelServer(t, http.StatusOK, `{"balance": "100.84292", "currency": "USD"}`)

	c := New(srv.URL, "secret-key")
	resp, err := c.Balance(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "balance", form.Get("action"))
	assert.InDelta(t, 100.84292, resp.Balance.Float(), 1e-9)
	assert.Equal(t, "USD", resp.Currency)
}

func TestNonOKStatusIsAnError(t *testing.T) {
	srv, _ := panelServer(t, http.StatusBadGateway, `upstream exploded`)

	c := New(srv.URL, "secret-key")
	_, err := c.Services(context.Background())

	assert.Error(t, err)
	var apiErr *domain.APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures are not api errors")
}
