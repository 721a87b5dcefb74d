package exchangerate

import (
	"github.com/viralzap/viralzap/internal/exchangerate/repository"
	"github.com/viralzap/viralzap/internal/exchangerate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("exchangerate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewFetcher),
	fx.Provide(service.New),
)
