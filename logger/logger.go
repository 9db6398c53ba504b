package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// Format represents the log format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Logger is a slog logger whose level and outputs can change at runtime.
type Logger struct {
	mu      sync.Mutex
	current atomic.Pointer[slog.Logger]
	writers []io.Writer
	level   *slog.LevelVar
	format  Format
}

// New creates a new logger
func New(level slog.Level, format Format, writers ...io.Writer) *Logger {
	l := &Logger{
		writers: writers,
		level:   new(slog.LevelVar),
		format:  format,
	}
	l.level.Set(level)
	l.rebuildLocked()
	return l
}

func (l *Logger) rebuildLocked() {
	out := io.MultiWriter(l.writers...)
	opts := &slog.HandlerOptions{Level: l.level}
	var handler slog.Handler
	if l.format == FormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	l.current.Store(slog.New(handler))
}

// Slog returns the underlying slog logger.
func (l *Logger) Slog() *slog.Logger {
	return l.current.Load()
}

// SetLevel sets the logging level. Safe to call while other goroutines log.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Level returns the current log level
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// SetFormat changes the log format
func (l *Logger) SetFormat(format Format) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = format
	l.rebuildLocked()
}

// Rotate closes the current log file and continues writing to path.
func (l *Logger) Rotate(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := openLogFile(path)
	if err != nil {
		return err
	}

	kept := make([]io.Writer, 0, len(l.writers)+1)
	for _, writer := range l.writers {
		if f, ok := writer.(*os.File); ok && !isStdStream(f) {
			f.Close()
			continue
		}
		kept = append(kept, writer)
	}
	l.writers = append(kept, file)
	l.rebuildLocked()
	return nil
}

// Close closes all file writers
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, writer := range l.writers {
		if f, ok := writer.(*os.File); ok && !isStdStream(f) {
			if err := f.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Logger) Debug(msg string, args ...any) { l.Slog().Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.Slog().Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.Slog().Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.Slog().Error(msg, args...) }

func isStdStream(f *os.File) bool {
	return f == os.Stdout || f == os.Stderr
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// Init initializes the default logger. Output always goes to stderr because
// stdout carries the stdio MCP channel; non-empty paths add file outputs.
func Init(level slog.Level, format Format, paths ...string) error {
	writers := []io.Writer{os.Stderr}
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		file, err := openLogFile(path)
		if err != nil {
			return err
		}
		writers = append(writers, file)
	}

	defaultLogger.Store(New(level, format, writers...))
	return nil
}

// GetLevelFromString returns the log level from a string
func GetLevelFromString(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Redact masks a secret, keeping only its last four characters.
func Redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(New(slog.LevelInfo, FormatText, os.Stderr))
}

// Default returns the process-wide logger.
func Default() *Logger {
	return defaultLogger.Load()
}

// SetLevel changes the level of the default logger.
func SetLevel(level slog.Level) {
	Default().SetLevel(level)
}

func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}

func DebugContext(ctx context.Context, msg string, args ...any) {
	Default().Slog().DebugContext(ctx, msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	Default().Slog().InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	Default().Slog().WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	Default().Slog().ErrorContext(ctx, msg, args...)
}
