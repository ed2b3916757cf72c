package db

import (
	"context"
	"errors"
	"fmt"
	"time"
	"tixgo/pkg/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLogger sends gorm's statement and error logs through the app logger.
type GormLogger struct {
	log           logger.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(log logger.Logger, level gormlogger.LogLevel) *GormLogger {
	return &GormLogger{log: log, level: level, slowThreshold: defaultSlowQuery}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.log.Info("gorm: " + fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Warn("gorm: " + fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.log.Error("gorm: " + fmt.Sprintf(msg, data...))
	}
}

// Trace logs one executed statement. Record-not-found is a cache miss for
// the stores, not an error.
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error("gorm query failed",
			logger.Field{Key: "sql", Value: sql},
			logger.Field{Key: "rows", Value: rows},
			logger.Field{Key: "elapsed", Value: elapsed},
			logger.Field{Key: "error", Value: err},
		)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.Warn("gorm slow query",
			logger.Field{Key: "sql", Value: sql},
			logger.Field{Key: "rows", Value: rows},
			logger.Field{Key: "elapsed", Value: elapsed},
		)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.log.Debug("gorm query",
			logger.Field{Key: "sql", Value: sql},
			logger.Field{Key: "rows", Value: rows},
			logger.Field{Key: "elapsed", Value: elapsed},
		)
	}
}
