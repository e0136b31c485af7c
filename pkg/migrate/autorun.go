package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/hangout-backend/pkg/config"
	"github.com/angelmondragon/hangout-backend/pkg/db"
	"github.com/angelmondragon/hangout-backend/pkg/db/models"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
)

// MaybeRunDev migrates on boot when the app runs in dev with
// HANGOUT_AUTO_MIGRATE set. Postgres gets the embedded goose files and
// sqlite gets AutoMigrate from the models.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	if cfg.FeatureFlags.UseSQLite || strings.EqualFold(cfg.DB.Driver, "sqlite") {
		logg.Info(ctx, "auto-migrating sqlite models")
		if err := client.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("sqlite automigrate: %w", err)
		}
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	m, err := New(sqlDB, Embedded(), logg)
	if err != nil {
		return err
	}
	defer m.Close()

	logg.Info(ctx, "applying embedded migrations")
	return m.Up(ctx)
}
