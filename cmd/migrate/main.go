package main

import (
	"errors"
	"flag"
	"log"
	"tixgo/cfg"
	"tixgo/pkg/db"
	"tixgo/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	direction := flag.String("direction", "up", "up or down")
	steps := flag.Int("steps", 0, "number of migrations to apply; 0 means all")
	source := flag.String("source", "file://db/migrations", "migration source URL")
	flag.Parse()

	// ============
	// Load config
	// ============
	config, errCfg := cfg.Load()
	if errCfg != nil {
		log.Fatal(errCfg)
	}
	zlogger := logger.NewZeroLog(config.AppEnv)

	if config.Cache.Backend != cfg.CacheBackendPostgres {
		zlogger.Warn("cache backend is not postgres, nothing to migrate",
			logger.Field{Key: "backend", Value: config.Cache.Backend})
		return
	}

	// ============
	// Migrate
	// ============
	pg := config.Postgres
	pgDSN := db.PostgresDSN(pg.User, pg.Password, pg.Host, pg.Port, pg.DBName, pg.SSLMode)

	m, err := migrate.New(*source, pgDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	switch {
	case *steps != 0 && *direction == "down":
		err = m.Steps(-*steps)
	case *steps != 0:
		err = m.Steps(*steps)
	case *direction == "down":
		err = m.Down()
	default:
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal(err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatal(err)
	}
	zlogger.Info("migration finished",
		logger.Field{Key: "direction", Value: *direction},
		logger.Field{Key: "version", Value: int64(version)},
		logger.Field{Key: "dirty", Value: dirty},
	)
}
