// Package logger builds the service's root zerolog logger.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file written inside Config.Path.
const FileName = "pibble.log"

// Logger is the root logger plus the rotating file behind it, if any.
type Logger struct {
	zerolog.Logger
	rotator *lumberjack.Logger
}

// Config holds logger configuration. Zero rotation limits fall back to
// 10 MB, 5 backups and 30 days.
type Config struct {
	Level      string
	Format     string // "console" or "json"
	Path       string // log directory; empty logs to stdout only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New logs to stdout and, when Path is set, to a rotating file.
func New(cfg Config) *Logger {
	return newWithConsole(cfg, os.Stdout)
}

func newWithConsole(cfg Config, out io.Writer) *Logger {
	var output io.Writer = consoleWriter(cfg.Format, out)

	rotator := fileWriter(cfg)
	if rotator != nil {
		output = io.MultiWriter(output, rotator)
	}

	level := ParseLevel(cfg.Level)
	if runningUnderGoRun() && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	return &Logger{
		Logger:  zerolog.New(output).Level(level).With().Timestamp().Logger(),
		rotator: rotator,
	}
}

func consoleWriter(format string, out io.Writer) io.Writer {
	if format == "json" {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
}

// fileWriter returns nil when file logging is off or the directory
// cannot be created.
func fileWriter(cfg Config) *lumberjack.Logger {
	if cfg.Path == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Path, FileName),
		MaxSize:    orDefault(cfg.MaxSizeMB, 10),
		MaxBackups: orDefault(cfg.MaxBackups, 5),
		MaxAge:     orDefault(cfg.MaxAgeDays, 30),
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}

// runningUnderGoRun reports whether the binary lives in the go-build cache.
func runningUnderGoRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	return strings.Contains(exe, "go-build")
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.rotator == nil {
		return nil
	}
	return l.rotator.Close()
}

// ParseLevel maps a configured level name onto zerolog, accepting "warning"
// and defaulting to info for blank or unknown names.
func ParseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}

	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// WithComponent tags every entry with component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:  l.Logger.With().Str("component", component).Logger(),
		rotator: l.rotator,
	}
}
