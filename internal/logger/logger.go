// Package logger configures structured logging for LeafNote.
//
// Production builds log JSON; every other environment gets a colorized
// single-line format. Attributes carrying credential material are
// redacted by both handlers.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// Format types for logging.
	formatJSON   = "json"
	formatPretty = "pretty"
)

// ANSI color codes.
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
)

// redacted replaces the value of any attribute whose key names credential material.
const redacted = "[REDACTED]"

// sensitiveKeys lists attribute keys that are never written verbatim.
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"password_hash": {},
	"token":         {},
	"session_token": {},
	"cookie":        {},
	"secret":        {},
	"client_secret": {},
	"authorization": {},
	"code":          {},
}

// IsSensitive reports whether an attribute key is redacted.
func IsSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// redact is a slog ReplaceAttr function that hides sensitive values and
// shortens source paths.
func redact(_ []string, a slog.Attr) slog.Attr {
	if IsSensitive(a.Key) {
		return slog.String(a.Key, redacted)
	}
	if a.Key == slog.SourceKey {
		if source, ok := a.Value.Any().(*slog.Source); ok {
			source.File = filepath.Base(source.File)
		}
	}
	return a
}

// Logger wraps slog.Logger with additional functionality.
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Writer      io.Writer
	Format      string
	Environment string
	Level       slog.Level
	AddSource   bool
}

// New creates a new logger with the given configuration.
func New(cfg Config) *Logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}

	// Auto-detect format based on environment if not specified.
	if cfg.Format == "" {
		if cfg.Environment == "production" {
			cfg.Format = formatJSON
		} else {
			cfg.Format = formatPretty
		}
	}

	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:       cfg.Level,
		AddSource:   cfg.AddSource,
		ReplaceAttr: redact,
	}

	if cfg.Format == formatJSON {
		handler = slog.NewJSONHandler(cfg.Writer, opts)
	} else {
		handler = NewPrettyHandler(cfg.Writer, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// ParseLevel converts a string to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Nop returns a logger that discards everything. Used by tests and tools.
func Nop() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithError adds an error attribute to the logger.
// A nil error returns the logger unchanged.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{Logger: l.With(slog.String("error", err.Error()))}
}

// PrettyHandler writes one colorized line per record:
//
//	15:04:05 INF message key=value http.status=200 error="boom"
//
// Group names prefix attribute keys. Writes are serialized across clones.
type PrettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	prefix string // joined group names, with a trailing dot
	attrs  []byte // pre-rendered WithAttrs output
}

var _ slog.Handler = (*PrettyHandler)(nil)

// NewPrettyHandler creates a new pretty handler.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	h := &PrettyHandler{mu: &sync.Mutex{}, w: w}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats and writes the log record.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 512)

	buf = append(buf, colorDim...)
	buf = r.Time.AppendFormat(buf, "15:04:05")
	buf = append(buf, colorReset...)
	buf = append(buf, ' ')

	label, color := levelLabel(r.Level)
	buf = append(buf, color...)
	buf = append(buf, label...)
	buf = append(buf, colorReset...)
	buf = append(buf, ' ')

	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		buf = append(buf, colorDim...)
		buf = append(buf, filepath.Base(frame.File)...)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(frame.Line), 10)
		buf = append(buf, colorReset...)
		buf = append(buf, ' ')
	}

	buf = append(buf, colorBold...)
	buf = append(buf, r.Message...)
	buf = append(buf, colorReset...)

	buf = append(buf, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, h.prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

// WithAttrs returns a new handler with additional attributes.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = slices.Clip(h.attrs)
	for _, a := range attrs {
		clone.attrs = clone.appendAttr(clone.attrs, h.prefix, a)
	}
	return &clone
}

// WithGroup returns a new handler with the given group.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// appendAttr renders " key=value", flattening groups and applying ReplaceAttr.
func (h *PrettyHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = h.appendAttr(buf, prefix, ga)
		}
		return buf
	}
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}
	if a.Equal(slog.Attr{}) {
		return buf
	}

	color := colorCyan
	if a.Key == "error" {
		color = colorRed
	}
	buf = append(buf, ' ')
	buf = append(buf, color...)
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	buf = append(buf, formatValue(a.Value)...)
	buf = append(buf, colorReset...)
	return buf
}

// levelLabel returns the three-letter level name and its color.
func levelLabel(level slog.Level) (label, color string) {
	switch {
	case level >= slog.LevelError:
		return "ERR", colorRed
	case level >= slog.LevelWarn:
		return "WRN", colorYellow
	case level >= slog.LevelInfo:
		return "INF", colorGreen
	default:
		return "DBG", colorMagenta
	}
}

// formatValue renders a value, quoting strings that contain spaces.
func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindString:
		if str := v.String(); str == "" || strings.ContainsAny(str, " \t\n\"=") {
			return strconv.Quote(str)
		}
		return v.String()
	default:
		return v.String()
	}
}
