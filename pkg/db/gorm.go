package db

import (
	"fmt"
	"tixgo/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenGorm layers gorm on top of an already pinged postgres pool so the
// pool settings of SQLClient stay authoritative.
func OpenGorm(executor SQLExecutor, log logger.Logger, debug bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: executor.DB()}), &gorm.Config{
		Logger: NewGormLogger(log, level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return gdb, nil
}
