package migration

import (
	"github.com/smallbiznis/facturo/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !cfg.RunMigrations {
			return nil
		}
		// Versioned SQL migrations target postgres only; other dialects
		// (sqlite in tests) migrate via gorm AutoMigrate.
		if cfg.DBType != "postgres" {
			log.Info("skipping sql migrations", zap.String("db_type", cfg.DBType))
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
