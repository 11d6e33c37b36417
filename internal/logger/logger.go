package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel defines log level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a LogLevel, defaulting to INFO for
// unknown names.
func ParseLevel(name string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Config logger configuration
type Config struct {
	LogDir     string   // Log directory
	Level      LogLevel // Log level
	MaxDays    int      // Max days to keep logs
	ConsoleOut bool     // Output to console as well
}

// Logger writes timestamped lines to one file per day in a directory,
// removing files that fall outside the retention window.
type Logger struct {
	mu      sync.Mutex
	level   LogLevel
	logDir  string
	maxDays int
	console bool

	file *os.File
	day  string
}

var (
	defaultLogger *Logger
	initOnce      sync.Once
)

// Init initializes the process-wide default logger. Later calls are no-ops.
func Init(cfg Config) error {
	var err error
	initOnce.Do(func() {
		defaultLogger, err = NewLogger(cfg)
	})
	return err
}

// NewLogger creates a new logger instance
func NewLogger(cfg Config) (*Logger, error) {
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = 7
	}

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{
		level:   cfg.Level,
		logDir:  cfg.LogDir,
		maxDays: cfg.MaxDays,
		console: cfg.ConsoleOut,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.openFileFor(time.Now()); err != nil {
		return nil, err
	}
	return l, nil
}

// openFileFor switches the logger to the file for the given day and kicks
// off pruning of expired files. Callers must hold l.mu.
func (l *Logger) openFileFor(now time.Time) error {
	day := now.Format("2006-01-02")
	if l.file != nil && l.day == day {
		return nil
	}

	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	name := filepath.Join(l.logDir, "searchmate-"+day+".log")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.file = f
	l.day = day

	go l.prune()

	return nil
}

// prune deletes the oldest log files beyond the retention window. The
// date sits in the file name, so lexical order is age order.
func (l *Logger) prune() {
	files, err := filepath.Glob(filepath.Join(l.logDir, "searchmate-*.log"))
	if err != nil || len(files) <= l.maxDays {
		return
	}

	sort.Strings(files)
	for _, stale := range files[:len(files)-l.maxDays] {
		os.Remove(stale)
	}
}

func (l *Logger) write(level LogLevel, format string, args ...interface{}) {
	if l == nil {
		return
	}
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if err := l.openFileFor(now); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return
	}

	line := fmt.Sprintf("[%s] [%s] %s\n",
		now.Format("2006-01-02 15:04:05"), level, fmt.Sprintf(format, args...))

	io.WriteString(l.file, line)
	if l.console {
		fmt.Print(line)
	}
}

// Debug logs at DEBUG level
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(DEBUG, format, args...)
}

// Info logs at INFO level
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(INFO, format, args...)
}

// Warn logs at WARN level
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(WARN, format, args...)
}

// Error logs at ERROR level
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(ERROR, format, args...)
}

// Close closes the current log file
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// The package-level functions log through the default logger and are safe
// to call before Init.

// Debug logs a debug message using the default logger
func Debug(format string, args ...interface{}) {
	defaultLogger.Debug(format, args...)
}

// Info logs an info message using the default logger
func Info(format string, args ...interface{}) {
	defaultLogger.Info(format, args...)
}

// Warn logs a warning message using the default logger
func Warn(format string, args ...interface{}) {
	defaultLogger.Warn(format, args...)
}

// Error logs an error message using the default logger
func Error(format string, args ...interface{}) {
	defaultLogger.Error(format, args...)
}

// Close closes the default logger
func Close() error {
	return defaultLogger.Close()
}
