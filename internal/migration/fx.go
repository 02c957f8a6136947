package migration

import (
	"github.com/bwmarrin/snowflake"
	admindomain "github.com/lodgeops/lodgeops/internal/admin/domain"
	"github.com/lodgeops/lodgeops/internal/config"
	rentdomain "github.com/lodgeops/lodgeops/internal/rent/domain"
	roomdomain "github.com/lodgeops/lodgeops/internal/room/domain"
	"github.com/lodgeops/lodgeops/internal/seed"
	tenantdomain "github.com/lodgeops/lodgeops/internal/tenant/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, genID *snowflake.Node) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite deployments rely on gorm's schema sync.
			if err := conn.AutoMigrate(
				&admindomain.Admin{},
				&roomdomain.Room{},
				&tenantdomain.Tenant{},
				&rentdomain.Rent{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultAdmin(conn, cfg, genID)
	}),
)
