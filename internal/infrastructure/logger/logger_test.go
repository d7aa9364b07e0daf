package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		log, err := New(&Config{Level: "debug", Format: "json", Output: path})
		require.NoError(t, err)

		log.Info("links built", zap.Int("count", 15))
		require.NoError(t, log.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"links built"`)
		assert.Contains(t, string(data), `"count":15`)
	})

	t.Run("unwritable file fails", func(t *testing.T) {
		_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
		assert.Error(t, err)
	})

	t.Run("environment presets", func(t *testing.T) {
		_, err := NewForEnvironment("production")
		require.NoError(t, err)
		_, err = NewForEnvironment("development")
		require.NoError(t, err)
	})
}

func TestForModule(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ForModule(zap.New(core), "usageModuleService").Info("ready")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "module", entry.LoggerName)
	assert.Equal(t, "usageModuleService", entry.ContextMap()["module"])
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, FromContext(ctx))
	assert.Empty(t, GetTeamID(ctx))

	core, logs := observer.New(zapcore.InfoLevel)
	ctx, enriched := WithTeamID(ctx, zap.New(core), "team-1")

	assert.Equal(t, "team-1", GetTeamID(ctx))
	assert.Same(t, enriched, FromContext(ctx))

	FromContext(ctx).Info("hello")
	assert.Equal(t, "team-1", logs.All()[0].ContextMap()["team_id"])
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, SlowThreshold(10*time.Millisecond))
	ctx, _ := WithTeamID(context.Background(), zap.NewNop(), "team-1")
	query := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), query, nil)
	gl.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	gl.Trace(ctx, time.Now(), query, errors.New("syntax error"))
	gl.Trace(ctx, time.Now(), query, gormlogger.ErrRecordNotFound)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "SQL Query", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "SQL Error", entries[2].Message)
	assert.Equal(t, "team-1", entries[0].ContextMap()["team_id"])
}

func TestGormLogger_Silent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info).LogMode(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Equal(t, 0, logs.Len())
}

func TestGormLogger_Options(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Error, ReportNotFound(), HideParams())

	gl.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 1, logs.Len())

	sql, params := gl.ParamsFilter(context.Background(), "SELECT ?", 42)
	assert.Equal(t, "SELECT ?", sql)
	assert.Nil(t, params)

	_, params = NewGormLogger(zap.NewNop(), gormlogger.Info).ParamsFilter(context.Background(), "SELECT ?", 42)
	assert.Equal(t, []any{42}, params)
}

func TestGormLogger_HideParamsThroughGorm(t *testing.T) {
	var gl gormlogger.Interface = NewGormLogger(zap.NewNop(), gormlogger.Info)
	_, ok := gl.(gorm.ParamsFilter)
	require.True(t, ok, "gorm only filters params for loggers implementing gorm.ParamsFilter")

	tests := []struct {
		name string
		opts []GormOption
		want string
	}{
		{name: "bound values", want: "SELECT 42"},
		{name: "placeholders", opts: []GormOption{HideParams()}, want: "SELECT ?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
				Logger: NewGormLogger(zap.New(core), gormlogger.Info, tt.opts...),
			})
			require.NoError(t, err)
			sqlDB, err := db.DB()
			require.NoError(t, err)
			t.Cleanup(func() { _ = sqlDB.Close() })

			require.NoError(t, db.Exec("SELECT ?", 42).Error)

			queries := logs.FilterMessage("SQL Query").All()
			require.NotEmpty(t, queries)
			assert.Equal(t, tt.want, queries[len(queries)-1].ContextMap()["sql"])
		})
	}
}

func TestGormLogger_Printf(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)
	ctx, _ := WithTeamID(context.Background(), zap.NewNop(), "team-7")

	gl.Info(ctx, "skipped %d", 1)
	gl.Warn(ctx, "replica %s lagging", "r1")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "replica r1 lagging", logs.All()[0].Message)
	assert.Equal(t, "team-7", logs.All()[0].ContextMap()["team_id"])
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("unknown"))
}
