package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Provider identifiers for the two upstream SMM panels we resell from.
const (
	ProviderSMMPrime  = "smmprime"
	ProviderBoostZone = "boostzone"
)

func KnownProviders() []string {
	return []string{ProviderSMMPrime, ProviderBoostZone}
}

func IsKnownProvider(id string) bool {
	switch id {
	case ProviderSMMPrime, ProviderBoostZone:
		return true
	default:
		return false
	}
}

var (
	ErrProviderNotConfigured = errors.New("provider_not_configured")
	ErrUnknownProvider       = errors.New("unknown_provider")
)

// APIError is an error payload returned by a panel inside a 200 response,
// e.g. {"error":"Incorrect order ID"}.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider api error: %s", e.Message)
}

// FlexString decodes JSON values that panels emit inconsistently as either a
// string or a number ("42" vs 42).
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

func (f FlexString) Float() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
	if err != nil {
		return 0
	}
	return v
}

func (f FlexString) Int() int {
	v, err := strconv.Atoi(strings.TrimSpace(string(f)))
	if err != nil {
		return int(f.Float())
	}
	return v
}

// FlexBool tolerates true/false, 1/0 and "1"/"true" spellings.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch trimmed {
	case "true", "1":
		*f = true
		return nil
	case "false", "0", "null":
		*f = false
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}

// RemoteService is one entry of a panel's `services` listing.
type RemoteService struct {
	Service  FlexString `json:"service"`
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Category string     `json:"category"`
	Rate     FlexString `json:"rate"`
	Min      FlexString `json:"min"`
	Max      FlexString `json:"max"`
	Dripfeed FlexBool   `json:"dripfeed"`
	Refill   FlexBool   `json:"refill"`
	Cancel   FlexBool   `json:"cancel"`
}

// AddOrderRequest carries the `add` action fields.
type AddOrderRequest struct {
	Service  string
	Link     string
	Quantity int
	Runs     int
	Interval int
}

type AddOrderResponse struct {
	Order FlexString `json:"order"`
	Error string     `json:"error"`
}

// StatusResponse is the `status` action reply for one order.
type StatusResponse struct {
	Charge     FlexString `json:"charge"`
	StartCount FlexString `json:"start_count"`
	Status     string     `json:"status"`
	Remains    FlexString `json:"remains"`
	Currency   string     `json:"currency"`
	Error      string     `json:"error"`
}

type RefillResponse struct {
	Refill FlexString `json:"refill"`
	Error  string     `json:"error"`
}

// MultiRefillResponse is one element of the batch `refill` reply. Refill is
// either the refill id or {"error": "..."}.
type MultiRefillResponse struct {
	Order  FlexString      `json:"order"`
	Refill json.RawMessage `json:"refill"`
}

type RefillStatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// CancelResponse is one element of the `cancel` action reply.
type CancelResponse struct {
	Order  FlexString      `json:"order"`
	Cancel json.RawMessage `json:"cancel"`
}

type BalanceResponse struct {
	Balance  FlexString `json:"balance"`
	Currency string     `json:"currency"`
	Error    string     `json:"error"`
}
