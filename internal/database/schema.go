package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/andriinero/inkspace-backend/internal/config"
	"github.com/andriinero/inkspace-backend/internal/middleware"

	"gorm.io/gorm"
)

const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

func isProdLikeEnv(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "production" || e == "prod" || e == "staging" || e == "stage"
}

// ResolveSchemaMode picks the configured mode, or sql for production-like
// environments and auto elsewhere.
func ResolveSchemaMode(cfg *config.Config) string {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode != "" {
		return mode
	}
	if isProdLikeEnv(cfg.Env) {
		return SchemaModeSQL
	}
	return SchemaModeAuto
}

func schemaPolicy(cfg *config.Config) (runSQL bool, runAuto bool, err error) {
	switch mode := ResolveSchemaMode(cfg); mode {
	case SchemaModeSQL:
		return true, false, nil
	case SchemaModeAuto:
		if isProdLikeEnv(cfg.Env) {
			return false, false, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q", cfg.Env)
		}
		return false, true, nil
	case SchemaModeHybrid:
		return true, !isProdLikeEnv(cfg.Env), nil
	default:
		return false, false, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
}

// ApplySchema runs SQL migrations and/or GORM AutoMigrate per the schema mode.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	runSQL, runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return err
	}

	if runSQL {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("access sql.DB: %w", err)
		}
		mg, err := NewMigrator(ctx, sqlDB)
		if err != nil {
			return err
		}
		upErr := mg.Up()
		closeErr := mg.Close()
		if upErr != nil {
			return fmt.Errorf("run sql migrations: %w", upErr)
		}
		if closeErr != nil {
			middleware.Logger.Warn("closing migrator", slog.String("error", closeErr.Error()))
		}
	}

	if runAuto {
		middleware.Logger.Info("Running GORM AutoMigrate",
			slog.String("mode", ResolveSchemaMode(cfg)), slog.String("env", cfg.Env))
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return nil
}
