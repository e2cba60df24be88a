package logging

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gorm.io/gorm"
	gl "gorm.io/gorm/logger"
)

// GormLogger routes gorm's SQL logging through hlog so that database output
// lands in the same sink as request logs.
type GormLogger struct {
	LogLevel                  gl.LogLevel
	SlowThreshold             time.Duration
	IgnoreRecordNotFoundError bool
}

var _ gl.Interface = (*GormLogger)(nil)

// NewGormLogger accepts the gorm level names used in config: silent, error, warn, info.
func NewGormLogger(level string, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		LogLevel:                  ParseGormLevel(level),
		SlowThreshold:             slowThreshold,
		IgnoreRecordNotFoundError: true,
	}
}

func ParseGormLevel(level string) gl.LogLevel {
	switch level {
	case "silent":
		return gl.Silent
	case "error":
		return gl.Error
	case "info":
		return gl.Info
	default:
		return gl.Warn
	}
}

func (l *GormLogger) LogMode(level gl.LogLevel) gl.Interface {
	nl := *l
	nl.LogLevel = level
	return &nl
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gl.Info {
		hlog.CtxInfof(ctx, "[gorm] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gl.Warn {
		hlog.CtxWarnf(ctx, "[gorm] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gl.Error {
		hlog.CtxErrorf(ctx, "[gorm] "+msg, data...)
	}
}

// Trace print sql message
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gl.Silent {
		return
	}

	elapsed := time.Since(begin)
	ms := float64(elapsed.Nanoseconds()) / 1e6
	switch {
	case err != nil && l.LogLevel >= gl.Error && (!errors.Is(err, gorm.ErrRecordNotFound) || !l.IgnoreRecordNotFoundError):
		sql, rows := fc()
		hlog.CtxErrorf(ctx, "[gorm] %v [%.3fms] [rows:%s] %s", err, ms, rowsString(rows), sql)
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= gl.Warn:
		sql, rows := fc()
		hlog.CtxWarnf(ctx, "[gorm] SLOW SQL >= %v [%.3fms] [rows:%s] %s", l.SlowThreshold, ms, rowsString(rows), sql)
	case l.LogLevel == gl.Info:
		sql, rows := fc()
		hlog.CtxDebugf(ctx, "[gorm] [%.3fms] [rows:%s] %s", ms, rowsString(rows), sql)
	}
}

func rowsString(rows int64) string {
	if rows == -1 {
		return "-"
	}
	return strconv.FormatInt(rows, 10)
}
