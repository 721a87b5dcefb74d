package domain

import (
	"errors"
	"time"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusInProgress = "in_progress"
	StatusPartial    = "partial"
	StatusCompleted  = "completed"
	StatusCanceled   = "canceled"
	StatusError      = "error"
	StatusRefunded   = "refunded"
)

// IsTerminal reports whether reconciliation may still move the order. The
// reconciler never revives a terminal order.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusCanceled, StatusRefunded:
		return true
	default:
		return false
	}
}

// ReconcilableStatuses are the states the batch reconciler polls upstream for.
func ReconcilableStatuses() []string {
	return []string{StatusPending, StatusProcessing, StatusInProgress}
}

// StaleOrderMessage is stored when an order ages out without a provider
// confirmation.
const StaleOrderMessage = "order expired without provider confirmation"

// StaleAge is how long a failing order may linger before it is marked as an
// error.
const StaleAge = 24 * time.Hour

// ReconcileBatchSize bounds one reconciliation run.
const ReconcileBatchSize = 100

// Order references a catalog service and tracks its upstream lifecycle.
// Charge is what the end user paid (BRL); Cost is the provider's price (USD),
// estimated at placement and replaced by the provider-reported charge when
// the order completes. Profit is only set on completion.
type Order struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	UserID          int64      `json:"user_id" gorm:"not null;index:ix_orders_user"`
	ServiceID       int64      `json:"service_id" gorm:"not null;index:ix_orders_service"`
	Provider        string     `json:"provider" gorm:"type:text;not null"`
	ProviderOrderID *string    `json:"provider_order_id,omitempty" gorm:"type:text;index:ix_orders_provider_order"`
	Link            string     `json:"link" gorm:"type:text;not null"`
	Quantity        int        `json:"quantity" gorm:"not null"`
	Charge          float64    `json:"charge" gorm:"not null"`
	Cost            float64    `json:"cost" gorm:"not null;default:0"`
	Status          string     `json:"status" gorm:"type:text;not null;default:pending;index:ix_orders_status"`
	StatusNote      string     `json:"status_note,omitempty" gorm:"type:text"`
	StartCount      int        `json:"start_count" gorm:"not null;default:0"`
	Remains         int        `json:"remains" gorm:"not null;default:0"`
	SyncAttempts    int        `json:"sync_attempts" gorm:"not null;default:0"`
	LastStatusCheck *time.Time `json:"last_status_check,omitempty"`
	Profit          *float64   `json:"profit,omitempty"`
	RefillID        *string    `json:"refill_id,omitempty" gorm:"type:text"`
	CreatedAt       time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }

var (
	ErrNotFound           = errors.New("not_found")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidLink        = errors.New("invalid_link")
	ErrServiceInactive    = errors.New("service_inactive")
	ErrQuantityOutOfRange = errors.New("quantity_out_of_range")
	ErrNoProviderOrder    = errors.New("no_provider_order")
	ErrRefillUnsupported  = errors.New("refill_unsupported")
	ErrRefillNotReady     = errors.New("refill_not_ready")
	ErrCancelUnsupported  = errors.New("cancel_unsupported")
	ErrAlreadyTerminal    = errors.New("already_terminal")
)
