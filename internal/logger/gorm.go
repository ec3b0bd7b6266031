package logger

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger adapts zerolog to gorm's logger interface.
//
// Queries are logged through the request-scoped logger when one is stored in
// the context (see middleware.ContextEnhancer), so SQL lines carry the same
// request_id as the access log.
//
//   - failed queries are logged at error, except record-not-found
//   - queries slower than SlowThreshold are logged at warn
//   - everything else is logged at debug
type GormLogger struct {
	base          zerolog.Logger
	level         gormlogger.LogLevel
	SlowThreshold time.Duration
}

// NewGormLogger builds a gorm logger over base.
// A zero slowThreshold disables slow query warnings.
func NewGormLogger(base zerolog.Logger, slowThreshold time.Duration) *GormLogger {
	level := gormlogger.Warn
	if base.GetLevel() <= zerolog.DebugLevel {
		level = gormlogger.Info
	}

	return &GormLogger{
		base:          base.With().Str("component", "gorm").Logger(),
		level:         level,
		SlowThreshold: slowThreshold,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.fromContext(ctx).Info().Msgf(msg, args...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.fromContext(ctx).Warn().Msgf(msg, args...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.fromContext(ctx).Error().Msgf(msg, args...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	logger := l.fromContext(ctx)

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		logger.Error().
			Err(err).
			Dur("elapsed", elapsed).
			Int64("rows", rows).
			Str("sql", sql).
			Msg("query failed")

	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		logger.Warn().
			Dur("elapsed", elapsed).
			Dur("threshold", l.SlowThreshold).
			Int64("rows", rows).
			Str("sql", sql).
			Msg("slow query")

	case l.level >= gormlogger.Info:
		sql, rows := fc()
		logger.Debug().
			Dur("elapsed", elapsed).
			Int64("rows", rows).
			Str("sql", sql).
			Msg("query")
	}
}

func (l *GormLogger) fromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if reqLogger := zerolog.Ctx(ctx); reqLogger.GetLevel() != zerolog.Disabled {
			scoped := reqLogger.With().Str("component", "gorm").Logger()
			return &scoped
		}
	}
	return &l.base
}
