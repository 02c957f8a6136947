package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/lodgeops/lodgeops/internal/clock"
	"github.com/lodgeops/lodgeops/internal/config"
	"github.com/lodgeops/lodgeops/internal/observability"
	"github.com/lodgeops/lodgeops/internal/rent"
	"github.com/lodgeops/lodgeops/internal/scheduler"
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

		rent.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
	return node
}
