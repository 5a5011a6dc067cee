package daemon

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/idam-admin/idam/internal/config"
	"github.com/idam-admin/idam/internal/db/dsn"
	"github.com/idam-admin/idam/internal/db/models"
	"github.com/idam-admin/idam/internal/logger/adapter/stdlogger"
)

// OpenDB connects to the configured database and migrates the schema.
func OpenDB(cfg config.DB) (*gorm.DB, error) {
	dialector, err := dsn.Dialector(cfg)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         stdlogger.Gorm(cfg.LogLevel, cfg.SlowThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
