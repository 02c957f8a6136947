package rent

import (
	"github.com/lodgeops/lodgeops/internal/rent/repository"
	"github.com/lodgeops/lodgeops/internal/rent/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rent.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
