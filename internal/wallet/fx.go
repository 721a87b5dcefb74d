package wallet

import (
	"github.com/viralzap/viralzap/internal/wallet/service"
	"go.uber.org/fx"
)

var Module = fx.Module("wallet.service",
	fx.Provide(service.New),
)
