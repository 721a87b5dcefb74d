package provider

import (
	"github.com/viralzap/viralzap/internal/provider/client"
	"github.com/viralzap/viralzap/internal/provider/gateway"
	"go.uber.org/fx"
)

var Module = fx.Module("provider.gateway",
	fx.Provide(client.NewFactory),
	fx.Provide(gateway.New),
)
