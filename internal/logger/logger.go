package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Bajtii/Object-detection/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file names inside the log directory, one per level.
const (
	InfoFile    = "info.log"
	WarningFile = "warning.log"
	ErrorFile   = "error.log"
)

// Logger provides leveled logging (info/warning/error) to files and stdout.
type Logger struct {
	zl     zerolog.Logger
	logDir string
	files  []*lumberjack.Logger
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(cfg *config.Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{logDir: cfg.LogDirectory}

	var console io.Writer = os.Stdout
	if cfg.LogFormat == "console" {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	info := l.openLogFile(InfoFile)
	warning := l.openLogFile(WarningFile)
	errs := l.openLogFile(ErrorFile)

	w := zerolog.MultiLevelWriter(
		console,
		levelRange{w: info, min: zerolog.TraceLevel, max: zerolog.InfoLevel},
		levelRange{w: warning, min: zerolog.WarnLevel, max: zerolog.WarnLevel},
		levelRange{w: errs, min: zerolog.ErrorLevel, max: zerolog.PanicLevel},
	)

	l.zl = zerolog.New(w).Level(ParseLevel(cfg.LogLevel)).With().Timestamp().Logger()
	return l, nil
}

// New builds a Logger writing only to w. Used by tests and tools.
func New(w io.Writer, level string) *Logger {
	return &Logger{zl: zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// openLogFile returns a size-rotated appender for a file in the log directory.
func (l *Logger) openLogFile(name string) *lumberjack.Logger {
	f := &lumberjack.Logger{
		Filename:   filepath.Join(l.logDir, name),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     14,
	}
	l.files = append(l.files, f)
	return f
}

// ParseLevel maps a level name to zerolog; unknown names fall back to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// With returns a child logger carrying an extra field, e.g. With("component", "notifier").
func (l *Logger) With(key, value string) *Logger {
	return &Logger{
		zl:     l.zl.With().Str(key, value).Logger(),
		logDir: l.logDir,
		files:  l.files,
	}
}

// Zerolog exposes the underlying logger for structured fields.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

// Debug writes a formatted debug-level log entry.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.zl.Debug().Msgf(format, v...)
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.zl.Error().Msgf(format, v...)
}

// LogDirectory returns the directory holding the level files ("" for writer-only loggers).
func (l *Logger) LogDirectory() string {
	return l.logDir
}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) error {
	if l.logDir == "" {
		return fmt.Errorf("logger has no log directory")
	}
	switch fileName {
	case InfoFile, WarningFile, ErrorFile:
	default:
		return fmt.Errorf("unknown log file: %s", fileName)
	}
	if err := os.Truncate(filepath.Join(l.logDir, fileName), 0); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to truncate %s: %w", fileName, err)
	}
	l.Info("File %s has been cleared", fileName)
	return nil
}

// Close flushes and closes the level files.
func (l *Logger) Close() error {
	var err error
	for _, f := range l.files {
		err = multierr.Append(err, f.Close())
	}
	return err
}

// levelRange forwards only entries whose level is within [min, max].
type levelRange struct {
	w        io.Writer
	min, max zerolog.Level
}

func (r levelRange) Write(p []byte) (int, error) {
	return r.w.Write(p)
}

func (r levelRange) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < r.min || level > r.max {
		return len(p), nil
	}
	return r.w.Write(p)
}
