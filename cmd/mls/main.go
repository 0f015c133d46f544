package main

import (
	"github.com/HollandRoad/mls/internal/adjustment"
	"github.com/HollandRoad/mls/internal/audit"
	"github.com/HollandRoad/mls/internal/billing"
	"github.com/HollandRoad/mls/internal/clock"
	"github.com/HollandRoad/mls/internal/communication"
	"github.com/HollandRoad/mls/internal/config"
	"github.com/HollandRoad/mls/internal/events"
	"github.com/HollandRoad/mls/internal/expense"
	"github.com/HollandRoad/mls/internal/ledger"
	"github.com/HollandRoad/mls/internal/logger"
	"github.com/HollandRoad/mls/internal/migration"
	"github.com/HollandRoad/mls/internal/notifier"
	"github.com/HollandRoad/mls/internal/observability"
	"github.com/HollandRoad/mls/internal/overview"
	"github.com/HollandRoad/mls/internal/seed"
	"github.com/HollandRoad/mls/internal/server"
	"github.com/HollandRoad/mls/internal/tenancy"
	"github.com/HollandRoad/mls/internal/tenant"
	"github.com/HollandRoad/mls/internal/unit"
	"github.com/HollandRoad/mls/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		events.Module,

		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if cfg.Seed.EnsureDemoData {
				return seed.EnsureDemoData(conn)
			}
			return nil
		}),

		unit.Module,
		tenant.Module,
		tenancy.Module,
		billing.Module,
		adjustment.Module,
		ledger.Module,
		communication.Module,
		expense.Module,
		overview.Module,
		audit.Module,
		notifier.Module,

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
