package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/viralzap/viralzap/internal/catalog"
	"github.com/viralzap/viralzap/internal/clock"
	"github.com/viralzap/viralzap/internal/config"
	"github.com/viralzap/viralzap/internal/credential"
	"github.com/viralzap/viralzap/internal/exchangerate"
	"github.com/viralzap/viralzap/internal/logger"
	"github.com/viralzap/viralzap/internal/metrics"
	"github.com/viralzap/viralzap/internal/migration"
	"github.com/viralzap/viralzap/internal/order"
	"github.com/viralzap/viralzap/internal/provider"
	"github.com/viralzap/viralzap/internal/scheduler"
	"github.com/viralzap/viralzap/internal/settings"
	"github.com/viralzap/viralzap/internal/wallet"
	"github.com/viralzap/viralzap/pkg/db"
	"github.com/viralzap/viralzap/pkg/redisconn"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		redisconn.Module,
		clock.Module,
		metrics.Module,
		migration.Module,

		// Domain services required by the jobs
		provider.Module,
		credential.Module,
		exchangerate.Module,
		settings.Module,
		wallet.Module,
		catalog.Module,
		order.Module,

		// No server module
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
