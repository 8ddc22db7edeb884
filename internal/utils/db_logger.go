package utils

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm/logger"
)

// ZerologWriter lets gorm's logger print through zerolog at debug level
type ZerologWriter struct {
	log zerolog.Logger
}

// NewZerologWriter wraps l for use with logger.New
func NewZerologWriter(l zerolog.Logger) ZerologWriter {
	return ZerologWriter{log: l.With().Str("component", "gorm").Logger()}
}

// Printf implements logger.Writer
func (w ZerologWriter) Printf(format string, args ...interface{}) {
	w.log.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// CustomGormLogger wraps a gorm logger and keeps polling queries out of the SQL log.
// Each traced statement is prefixed with the application frame that issued it.
type CustomGormLogger struct {
	logger.Interface
	ignoredQueryPatterns []string
}

// NewCustomGormLogger drops successful statements containing any of ignoredPatterns
func NewCustomGormLogger(l logger.Interface, ignoredPatterns ...string) *CustomGormLogger {
	return &CustomGormLogger{Interface: l, ignoredQueryPatterns: ignoredPatterns}
}

func (l *CustomGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return NewCustomGormLogger(l.Interface.LogMode(level), l.ignoredQueryPatterns...)
}

func (l *CustomGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	sql, rows := fc()
	if err == nil && l.ignored(sql) {
		return
	}

	if origin := queryOrigin(); origin != "" {
		sql = "[" + origin + "] " + sql
	}
	l.Interface.Trace(ctx, begin, func() (string, int64) { return sql, rows }, err)
}

func (l *CustomGormLogger) ignored(sql string) bool {
	for _, pattern := range l.ignoredQueryPatterns {
		if strings.Contains(sql, pattern) {
			return true
		}
	}
	return false
}

var skippedFrames = []string{"gorm.io/", "dossiers/internal/database.", "dossiers/internal/utils.(*CustomGormLogger)"}

// queryOrigin names the repository or service function behind the current query
func queryOrigin() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !skipFrame(frame.Function) && frame.Function != "" {
			short := frame.Function[strings.LastIndexByte(frame.Function, '/')+1:]
			return fmt.Sprintf("%s %s:%d", short, filepath.Base(frame.File), frame.Line)
		}
		if !more {
			return ""
		}
	}
}

func skipFrame(function string) bool {
	for _, prefix := range skippedFrames {
		if strings.HasPrefix(function, prefix) {
			return true
		}
	}
	return false
}
