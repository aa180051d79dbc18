package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.RWMutex
	global *slog.Logger
)

// Config holds logger configuration
type Config struct {
	Level     string // DEBUG, INFO, WARN, ERROR
	Format    string // json, text
	AddSource bool
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New は w に出力するロガーを作る。テストでは bytes.Buffer を渡す。
func New(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// Init はグローバルロガーを差し替え、slog の既定にも設定する
func Init(cfg Config) *slog.Logger {
	l := New(cfg, os.Stdout)
	Set(l)
	return l
}

func Set(l *slog.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
	slog.SetDefault(l)
}

// Get returns the global logger
func Get() *slog.Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l == nil {
		return Init(Config{Level: "INFO", Format: "json"})
	}
	return l
}

func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}
