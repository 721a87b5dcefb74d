package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(ProvideRegistry),
	fx.Provide(New),
)

func ProvideRegistry() (*prometheus.Registry, prometheus.Registerer) {
	reg := prometheus.NewRegistry()
	return reg, reg
}
