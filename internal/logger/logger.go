// Package logger provides JSON structured logging using zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var globalLogger zerolog.Logger

// Config selects the level and destination of log output.
// Output is "stdout", "stderr", "discard" or a file path.
type Config struct {
	Level      string `yaml:"level"`
	Debug      bool   `yaml:"debug"`
	Output     string `yaml:"output"`
	TimeFormat string `yaml:"time_format"`
}

func init() {
	globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.TimeFieldFormat = time.RFC3339
}

// Init configures the global logger. The returned closer releases a log file
// when Output names one; it is a no-op otherwise.
func Init(config Config) (io.Closer, error) {
	output, closer, err := openOutput(config.Output)
	if err != nil {
		return nil, err
	}

	level := zerolog.InfoLevel
	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			_ = closer.Close()
			return nil, fmt.Errorf("log level %q: %w", config.Level, err)
		}
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	globalLogger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = globalLogger

	return closer, nil
}

func openOutput(name string) (io.Writer, io.Closer, error) {
	switch name {
	case "", "stderr":
		return os.Stderr, nopCloser{}, nil
	case "stdout":
		return os.Stdout, nopCloser{}, nil
	case "discard":
		return io.Discard, nopCloser{}, nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// GetLogger returns the global logger.
func GetLogger() zerolog.Logger {
	return globalLogger
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}

// NewTestLogger returns a logger that discards all output.
func NewTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard).Level(zerolog.Disabled)
}
