package scheduler

import (
	"time"
)

// Config controls scheduler intervals and job timeouts.
type Config struct {
	RunInterval      time.Duration
	CatalogInterval  time.Duration
	BalanceInterval  time.Duration
	ReconcileTimeout time.Duration
	SyncTimeout      time.Duration
	LockTTL          time.Duration
	EnabledJobs      []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:      5 * time.Minute,
		CatalogInterval:  30 * time.Minute,
		BalanceInterval:  time.Hour,
		ReconcileTimeout: 2 * time.Minute,
		SyncTimeout:      10 * time.Minute,
		LockTTL:          5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.CatalogInterval <= 0 {
		c.CatalogInterval = defaults.CatalogInterval
	}
	if c.BalanceInterval <= 0 {
		c.BalanceInterval = defaults.BalanceInterval
	}
	if c.ReconcileTimeout <= 0 {
		c.ReconcileTimeout = defaults.ReconcileTimeout
	}
	if c.SyncTimeout <= 0 {
		c.SyncTimeout = defaults.SyncTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}

func ProvideConfig() Config {
	return DefaultConfig()
}
