package catalog

import (
	"github.com/viralzap/viralzap/internal/catalog/repository"
	"github.com/viralzap/viralzap/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
