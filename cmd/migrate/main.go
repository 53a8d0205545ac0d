package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/procurehub/portal/pkg/config"
	"github.com/procurehub/portal/pkg/db"
	"github.com/procurehub/portal/pkg/logger"
	"github.com/procurehub/portal/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "portal-migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate|automigrate")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate only touch the filesystem
	switch *cmd {
	case "create":
		if *name == "" {
			fail("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fail("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			fail("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "portal-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, db.Options{UseSQLite: cfg.FeatureFlags.UseSQLite}, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	ctx = logg.WithField(ctx, "dialect", dbClient.Dialect())

	if *cmd == "automigrate" || dbClient.Dialect() == "sqlite" {
		if *cmd != "up" && *cmd != "automigrate" {
			fail("-cmd=%s is not supported for sqlite databases", *cmd)
		}
		if err := migrate.AutoMigrateModels(dbClient.DB()); err != nil {
			fail("auto-migrate failed: %v", err)
		}
		logg.Info(ctx, "GORM auto-migrate completed")
		return
	}

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	logg.Info(ctx, "migrate ready")

	switch *cmd {
	case "up", "down", "status":
		if err := migrate.Run(ctx, sqlDB, *dir, *cmd); err != nil {
			fail("goose %s failed: %v", *cmd, err)
		}
	case "version":
		if *version == "" {
			fail("missing -version for version command")
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, *dir, *version); err != nil {
			fail("goose version migrate failed: %v", err)
		}
	default:
		fail("unknown -cmd value: %s", *cmd)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
