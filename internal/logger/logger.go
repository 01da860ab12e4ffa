package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DefaultContextLogger = &zerolog.Logger{}
}

var (
	globalLogger *Logger
	once         sync.Once

	// defaultConfig is used when Get is called before Setup.
	defaultConfig = Config{
		Level:      "info",
		Format:     FormatConsole,
		TimeFormat: time.RFC3339,
	}
)

// Logger wraps zerolog.Logger to provide our own interface.
type Logger struct {
	zerolog.Logger
}

// LogFormat defines the available log formats.
type LogFormat string

const (
	// FormatJSON is the JSON format
	FormatJSON LogFormat = "json"
	// FormatConsole is the console format
	FormatConsole LogFormat = "console"
)

// ParseLogFormat parses a string into a LogFormat.
func ParseLogFormat(format string) LogFormat {
	switch strings.ToLower(format) {
	case "console":
		return FormatConsole
	case "json":
		return FormatJSON
	default:
		return FormatJSON
	}
}

// Config holds the configuration for the logger.
type Config struct {
	// Level is the log level (debug, info, warn, error, fatal, panic)
	Level string
	// Format is the log format (json, console)
	Format LogFormat
	// Output is the output writer (default: os.Stderr)
	Output io.Writer
	// TimeFormat is the time format (default: time.RFC3339)
	TimeFormat string
}

// Get returns the global logger instance, initializing it with defaults if
// Setup was never called.
func Get() *Logger {
	once.Do(func() {
		if globalLogger == nil {
			setupLogger(defaultConfig)
		}
	})
	return globalLogger
}

// Setup initializes the global logger with the given configuration.
// Subsequent calls are ignored.
func Setup(cfg Config) {
	once.Do(func() {
		setupLogger(cfg)
	})
}

// ResetForTesting resets the global logger so tests can reconfigure it.
func ResetForTesting() {
	globalLogger = nil
	once = sync.Once{}
}

func setupLogger(cfg Config) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err == nil {
			level = parsed
		}
	}

	if cfg.Format == "" {
		cfg.Format = FormatJSON
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var logger zerolog.Logger
	switch cfg.Format {
	case FormatConsole:
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: cfg.TimeFormat,
		})
	default:
		logger = zerolog.New(output)
	}

	logger = logger.Level(level).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(level)

	globalLogger = &Logger{Logger: logger}
}

// WithComponent returns a child logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	if l == nil {
		return Get().WithComponent(name)
	}
	child := l.Logger.With().Str("component", name).Logger()
	return &Logger{Logger: child}
}

// WithFields adds the given fields to the logger and returns a new instance.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	if l == nil {
		return Get()
	}
	if len(fields) == 0 {
		return l
	}

	logger := l.Logger
	for k, v := range fields {
		logger = logger.With().Interface(k, v).Logger()
	}
	return &Logger{Logger: logger}
}
