package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger sends gorm's SQL trace to zap. Queries issued with a team in the
// context carry its ID.
type GormLogger struct {
	log *zap.Logger
	cfg gormlogger.Config
}

// GormOption adjusts the gorm logger
type GormOption func(*gormlogger.Config)

// SlowThreshold logs queries slower than d as warnings. Zero disables it.
func SlowThreshold(d time.Duration) GormOption {
	return func(c *gormlogger.Config) {
		c.SlowThreshold = d
	}
}

// ReportNotFound logs gorm.ErrRecordNotFound as an error
func ReportNotFound() GormOption {
	return func(c *gormlogger.Config) {
		c.IgnoreRecordNotFoundError = false
	}
}

// HideParams logs statements with placeholders instead of bound values
func HideParams() GormOption {
	return func(c *gormlogger.Config) {
		c.ParameterizedQueries = true
	}
}

// NewGormLogger creates a gorm logger writing to log
func NewGormLogger(log *zap.Logger, level gormlogger.LogLevel, opts ...GormOption) *GormLogger {
	cfg := gormlogger.Config{
		LogLevel:                  level,
		SlowThreshold:             200 * time.Millisecond,
		IgnoreRecordNotFoundError: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &GormLogger{log: log.Named("gorm"), cfg: cfg}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.cfg.LogLevel = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, level zapcore.Level, msg string, data []any) {
	if l.cfg.LogLevel < min {
		return
	}
	if ce := l.log.Check(level, fmt.Sprintf(msg, data...)); ce != nil {
		ce.Write(teamField(ctx)...)
	}
}

// ParamsFilter implements gorm.ParamsFilter
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, params ...any) (string, []any) {
	if l.cfg.ParameterizedQueries {
		return sql, nil
	}
	return sql, params
}

// Trace implements gormlogger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.cfg.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	slow := l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold

	var (
		level zapcore.Level
		msg   string
	)
	switch {
	case err != nil && l.cfg.LogLevel >= gormlogger.Error:
		if l.cfg.IgnoreRecordNotFoundError && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		level, msg = zapcore.ErrorLevel, "SQL Error"
	case slow && l.cfg.LogLevel >= gormlogger.Warn:
		level, msg = zapcore.WarnLevel, fmt.Sprintf("SLOW SQL >= %v", l.cfg.SlowThreshold)
	case l.cfg.LogLevel >= gormlogger.Info:
		level, msg = zapcore.DebugLevel, "SQL Query"
	default:
		return
	}

	ce := l.log.Check(level, msg)
	if ce == nil {
		return
	}
	sql, rows := fc()
	fields := append(teamField(ctx),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	)
	if level == zapcore.ErrorLevel {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

func teamField(ctx context.Context) []zap.Field {
	if teamID := GetTeamID(ctx); teamID != "" {
		return []zap.Field{zap.String("team_id", teamID)}
	}
	return nil
}

// GormLevel maps a zap level name to the gorm level that logs as much
func GormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

var (
	_ gormlogger.Interface = (*GormLogger)(nil)
	_ gorm.ParamsFilter    = (*GormLogger)(nil)
)
