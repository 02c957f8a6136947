package tenant

import (
	"github.com/lodgeops/lodgeops/internal/tenant/repository"
	"github.com/lodgeops/lodgeops/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
