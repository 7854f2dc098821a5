package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/royaltyflow/internal/catalog"
	"github.com/smallbiznis/royaltyflow/internal/config"
	"github.com/smallbiznis/royaltyflow/internal/ingest"
	"github.com/smallbiznis/royaltyflow/internal/logger"
	"github.com/smallbiznis/royaltyflow/internal/migration"
	"github.com/smallbiznis/royaltyflow/internal/royalty"
	"github.com/smallbiznis/royaltyflow/internal/server"
	"github.com/smallbiznis/royaltyflow/pkg/db"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(func(cfg config.Config) *snowflake.Node {
			node, err := snowflake.NewNode(cfg.SnowflakeNode)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		fx.Invoke(func(conn *gorm.DB) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return migration.RunMigrations(sqlDB)
		}),
		catalog.Module,
		royalty.Module,
		ingest.Module,
		server.Module,
	)
	app.Run()
}
