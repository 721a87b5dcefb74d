package credential

import (
	"github.com/viralzap/viralzap/internal/credential/repository"
	"github.com/viralzap/viralzap/internal/credential/service"
	providerdomain "github.com/viralzap/viralzap/internal/provider/domain"
	"go.uber.org/fx"

	credentialdomain "github.com/viralzap/viralzap/internal/credential/domain"
)

var Module = fx.Module("credential.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(svc credentialdomain.Service) providerdomain.CredentialSource { return svc }),
)
