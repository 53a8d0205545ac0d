package migrate

import (
	"context"
	"fmt"

	"github.com/procurehub/portal/pkg/config"
	"github.com/procurehub/portal/pkg/db"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/logger"
	"gorm.io/gorm"
)

// MaybeRunDev executes migrations automatically when the app is running in dev mode and
// the feature flag is enabled. SQLite databases are created from the GORM models because
// the goose files target Postgres.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	if client.Dialect() == "sqlite" {
		ctx = logg.WithField(ctx, "dialect", "sqlite")
		logg.Info(ctx, "running GORM auto-migrate (dev auto-run)")
		if err := AutoMigrateModels(client.DB()); err != nil {
			return err
		}
		logg.Info(ctx, "GORM auto-migrate completed")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// AutoMigrateModels creates the portal tables from the GORM models.
func AutoMigrateModels(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&models.User{}, &models.Order{}, &models.Quotation{}); err != nil {
		return fmt.Errorf("auto-migrate models: %w", err)
	}
	return nil
}
