package device

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record; Enabled returns false so callers skip formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger sets the logger used by every device that was not given one through WithLogger.
// By default devices log nothing. Pass nil to restore the silent default.
//
// Log levels:
//   - [slog.LevelDebug]: descriptor creation and release, attribute rebinding
//   - [slog.LevelInfo]: context lost and restored, queried capabilities
//   - [slog.LevelWarn]: suppressed compile and link failures, resources skipped on restore
//
// Parameters:
//   - l: the logger, or nil
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the package logger.
//
// Returns:
//   - *slog.Logger: the current package logger
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
