package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, slow time.Duration) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, slow), recorded
}

func sqlFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_LogMode(t *testing.T) {
	l, _ := newObservedGormLogger(gormlogger.Info, 0)
	changed := l.LogMode(gormlogger.Error)

	assert.Equal(t, gormlogger.Info, l.level)
	cl, ok := changed.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Error, cl.level)
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")

	t.Run("silent logs nothing", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Silent, 0)
		l.Trace(ctx, time.Now(), sqlFn("SELECT 1", 1), errors.New("boom"))
		assert.Zero(t, recorded.Len())
	})

	t.Run("errors are logged with request id", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Error, 0)
		l.Trace(ctx, time.Now(), sqlFn("INSERT INTO follows", 0), errors.New("duplicate key"))

		require.Equal(t, 1, recorded.Len())
		entry := recorded.All()[0]
		assert.Equal(t, "SQL error", entry.Message)
		assert.Equal(t, "req-42", entry.ContextMap()["request_id"])
		assert.Equal(t, "INSERT INTO follows", entry.ContextMap()["sql"])
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Info, 0)
		l.Trace(ctx, time.Now(), sqlFn("SELECT * FROM users", 0), gormlogger.ErrRecordNotFound)

		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, "SQL query", recorded.All()[0].Message)
	})

	t.Run("slow queries warn", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Warn, time.Millisecond)
		l.Trace(ctx, time.Now().Add(-50*time.Millisecond), sqlFn("SELECT * FROM place_reviews", 3), nil)

		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, "Slow SQL", recorded.All()[0].Message)
		assert.Equal(t, zapcore.WarnLevel, recorded.All()[0].Level)
	})

	t.Run("fast queries below info are skipped", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Warn, time.Hour)
		l.Trace(ctx, time.Now(), sqlFn("SELECT 1", 1), nil)
		assert.Zero(t, recorded.Len())
	})
}

func TestGormLogger_Messages(t *testing.T) {
	l, recorded := newObservedGormLogger(gormlogger.Warn, 0)
	l.Info(context.Background(), "info %d", 1)
	l.Warn(context.Background(), "warn %d", 2)
	l.Error(context.Background(), "error %d", 3)

	require.Equal(t, 2, recorded.Len())
	assert.Equal(t, "warn 2", recorded.All()[0].Message)
	assert.Equal(t, "error 3", recorded.All()[1].Message)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
