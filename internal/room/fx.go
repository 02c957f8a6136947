package room

import (
	"github.com/lodgeops/lodgeops/internal/room/repository"
	"github.com/lodgeops/lodgeops/internal/room/service"
	"go.uber.org/fx"
)

var Module = fx.Module("room.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
