package order

import (
	"github.com/viralzap/viralzap/internal/order/repository"
	"github.com/viralzap/viralzap/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
