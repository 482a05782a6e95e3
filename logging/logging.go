// Package logging builds the structured logger shared by the server, the
// plan service and the CLI.
package logging

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/phuslu/log"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New creates a logger writing to stderr. Unknown levels fall back to info.
func New(level, format string) *log.Logger {
	return NewWithOutput(level, format, os.Stderr)
}

// NewWithOutput creates a logger writing to w.
func NewWithOutput(level, format string, w io.Writer) *log.Logger {
	logger := &log.Logger{
		Level:      parseLevel(level),
		TimeFormat: time.RFC3339,
	}
	if format == FormatJSON {
		logger.Writer = &log.IOWriter{Writer: w}
	} else {
		logger.Writer = &log.ConsoleWriter{Writer: w, QuoteString: true, EndWithMessage: true}
	}
	return logger
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return &log.Logger{Level: log.ErrorLevel, Writer: &log.IOWriter{Writer: io.Discard}}
}

func parseLevel(level string) log.Level {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return log.ParseLevel(level)
	default:
		return log.InfoLevel
	}
}

// =============================================================================
// HTTP MIDDLEWARE
// =============================================================================

// Middleware logs one line per request with the chi request ID. It replaces
// chi's middleware.Logger and sits in the same position in the stack.
func Middleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				entry := logger.Info()
				if status >= http.StatusInternalServerError {
					entry = logger.Error()
				}
				entry.
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", status).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
