package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/lodgeops/lodgeops/internal/admin"
	"github.com/lodgeops/lodgeops/internal/clock"
	"github.com/lodgeops/lodgeops/internal/config"
	"github.com/lodgeops/lodgeops/internal/migration"
	"github.com/lodgeops/lodgeops/internal/observability"
	"github.com/lodgeops/lodgeops/internal/rent"
	"github.com/lodgeops/lodgeops/internal/room"
	"github.com/lodgeops/lodgeops/internal/server"
	"github.com/lodgeops/lodgeops/internal/tenant"
	"github.com/lodgeops/lodgeops/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		admin.Module,
		room.Module,
		rent.Module,
		tenant.Module,

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server) {
			s.RegisterAPIRoutes()
		}),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
