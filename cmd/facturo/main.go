package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/facturo/internal/clock"
	"github.com/smallbiznis/facturo/internal/config"
	"github.com/smallbiznis/facturo/internal/logger"
	"github.com/smallbiznis/facturo/internal/migration"
	"github.com/smallbiznis/facturo/internal/server"
	"github.com/smallbiznis/facturo/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP server plus every functional domain it serves
		server.Module,
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
