package admin

import (
	"github.com/lodgeops/lodgeops/internal/admin/repository"
	"github.com/lodgeops/lodgeops/internal/admin/service"
	"go.uber.org/fx"
)

var Module = fx.Module("admin.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
