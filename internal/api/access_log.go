package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// accessLogFormatter writes one slog record per request. Only the path is
// logged: query strings carry OAuth codes and state.
type accessLogFormatter struct {
	logger *slog.Logger
}

func (f *accessLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &accessLogEntry{
		logger: f.logger.With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		),
	}
}

type accessLogEntry struct {
	logger *slog.Logger
}

func (e *accessLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	level := slog.LevelInfo
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}
	e.logger.Log(context.Background(), level, "HTTP request",
		"status", status,
		"bytes", bytes,
		"duration", elapsed,
	)
}

func (e *accessLogEntry) Panic(v any, stack []byte) {
	e.logger.Error("HTTP handler panic", "panic", v, "stack", string(stack))
}
