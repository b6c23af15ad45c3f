// Package logger provides the engine's shared structured-logging setup.
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level is the zerolog level type, re-exported so callers don't import
// zerolog directly.
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config controls log level, format and output sink.
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig returns the engine's out-of-the-box logging defaults.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init sets up the package-level logger exactly once.
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the package logger, initializing it with defaults on first
// use if Init was never called.
func Get() *zerolog.Logger {
	// Init runs its body only once, so this is a no-op after the first
	// Init call, whether that call came from here or from the caller.
	Init(DefaultConfig())
	return &logger
}

// WithContext attaches request-scoped fields carried on ctx, if present.
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	if reqID, ok := ctx.Value("request_id").(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}

	return &l
}

// Debug records a debug-level event.
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info records an info-level event.
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn records a warning-level event.
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error records an error-level event.
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal records a fatal-level event.
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError attaches err to an error-level event.
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField returns a derived logger carrying one extra field.
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// WithFields returns a derived logger carrying several extra fields.
func WithFields(fields map[string]interface{}) *zerolog.Logger {
	ctx := Get().With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &l
}

// RosterLogger is the roster-generation engine's domain logger: the
// solver driver (including its report of a pre-analyzer rejection)
// logs through this instead of calling
// zerolog directly, so every generation-lifecycle message carries the
// same structured shape.
type RosterLogger struct {
	base *zerolog.Logger
}

// NewRosterLogger returns a RosterLogger tagged with component=roster.
func NewRosterLogger() *RosterLogger {
	l := Get().With().Str("component", "roster").Logger()
	return &RosterLogger{base: &l}
}

// StartGeneration logs the beginning of a single generation run.
func (l *RosterLogger) StartGeneration(runID string, year, month, staffCount int, mode string) {
	l.base.Info().
		Str("run_id", runID).
		Int("year", year).
		Int("month", month).
		Int("staff", staffCount).
		Str("mode", mode).
		Msg("starting roster generation")
}

// PreflightRejected logs a feasibility pre-analyzer short-circuit.
func (l *RosterLogger) PreflightRejected(runID, check, details string) {
	l.base.Warn().
		Str("run_id", runID).
		Str("check", check).
		Str("details", details).
		Msg("pre-flight check rejected input")
}

// ConstraintSkipped logs a non-fatal encoder skip (unknown label, etc).
func (l *RosterLogger) ConstraintSkipped(runID, category, reason string) {
	l.base.Warn().
		Str("run_id", runID).
		Str("category", category).
		Str("reason", reason).
		Msg("constraint skipped")
}

// Incumbent logs a solver incumbent-solution event.
func (l *RosterLogger) Incumbent(runID string, index int, elapsed time.Duration, objective int64) {
	l.base.Debug().
		Str("run_id", runID).
		Int("solution_index", index).
		Dur("elapsed", elapsed).
		Int64("objective", objective).
		Msg("incumbent solution")
}

// GenerationComplete logs the terminal status of a generation run.
func (l *RosterLogger) GenerationComplete(runID, status string, duration time.Duration, objective int64) {
	l.base.Info().
		Str("run_id", runID).
		Str("status", status).
		Dur("duration", duration).
		Int64("objective", objective).
		Msg("roster generation complete")
}
