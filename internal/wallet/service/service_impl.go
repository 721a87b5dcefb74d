package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/viralzap/viralzap/internal/clock"
	"github.com/viralzap/viralzap/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("wallet.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Balance(ctx context.Context, userID int64) (float64, error) {
	wallet, err := s.find(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}
	if wallet == nil {
		return 0, nil
	}
	return wallet.Balance, nil
}

func (s *Service) Deposit(ctx context.Context, userID int64, amount float64, note string) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.apply(ctx, tx, userID, amount, nil, domain.TxnDeposit, note, false)
	})
}

// Debit charges an order payment. The balance check and the write happen in
// one transaction so two concurrent orders cannot both spend the same funds.
func (s *Service) Debit(ctx context.Context, userID int64, amount float64, orderID int64, note string) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.apply(ctx, tx, userID, -amount, &orderID, domain.TxnOrderPayment, note, true)
	})
}

func (s *Service) Credit(ctx context.Context, userID int64, amount float64, orderID int64, note string) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.apply(ctx, tx, userID, amount, &orderID, domain.TxnRefund, note, false)
	})
}

func (s *Service) Transactions(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var items []domain.Transaction
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, user_id, order_id, type, amount, note, created_at
		 FROM wallet_transactions WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) apply(ctx context.Context, tx *gorm.DB, userID int64, delta float64, orderID *int64, txnType, note string, checkFunds bool) error {
	wallet, err := s.find(ctx, tx, userID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	if wallet == nil {
		wallet = &domain.Wallet{
			ID:        s.genID.Generate().Int64(),
			UserID:    userID,
			CreatedAt: now,
		}
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO wallets (id, user_id, balance, created_at, updated_at) VALUES (?, ?, 0, ?, ?)`,
			wallet.ID, wallet.UserID, now, now,
		).Error; err != nil {
			return err
		}
	}

	if checkFunds && wallet.Balance+delta < 0 {
		return domain.ErrInsufficientFunds
	}

	if err := tx.WithContext(ctx).Exec(
		`UPDATE wallets SET balance = balance + ?, updated_at = ? WHERE user_id = ?`,
		delta, now, userID,
	).Error; err != nil {
		return err
	}

	return tx.WithContext(ctx).Exec(
		`INSERT INTO wallet_transactions (id, user_id, order_id, type, amount, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.genID.Generate().Int64(), userID, orderID, txnType, delta, note, now,
	).Error
}

func (s *Service) find(ctx context.Context, db *gorm.DB, userID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE user_id = ?`,
		userID,
	).Scan(&wallet).Error
	if err != nil {
		return nil, err
	}
	if wallet.ID == 0 {
		return nil, nil
	}
	return &wallet, nil
}
