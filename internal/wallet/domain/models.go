package domain

import (
	"context"
	"errors"
	"time"
)

type Wallet struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:ux_wallets_user"`
	Balance   float64   `json:"balance" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Wallet) TableName() string { return "wallets" }

const (
	TxnDeposit      = "deposit"
	TxnOrderPayment = "order_payment"
	TxnRefund       = "refund"
)

// Transaction is an append-only movement against a wallet. Amount is signed:
// deposits and refunds are positive, order payments negative.
type Transaction struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index:ix_wallet_txns_user"`
	OrderID   *int64    `json:"order_id,omitempty"`
	Type      string    `json:"type" gorm:"type:text;not null"`
	Amount    float64   `json:"amount" gorm:"not null"`
	Note      string    `json:"note" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Transaction) TableName() string { return "wallet_transactions" }

var (
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrInvalidAmount     = errors.New("invalid_amount")
)

type Service interface {
	Balance(ctx context.Context, userID int64) (float64, error)
	Deposit(ctx context.Context, userID int64, amount float64, note string) error
	Debit(ctx context.Context, userID int64, amount float64, orderID int64, note string) error
	Credit(ctx context.Context, userID int64, amount float64, orderID int64, note string) error
	Transactions(ctx context.Context, userID int64, limit int) ([]Transaction, error)
}
