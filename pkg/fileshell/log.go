package fileshell

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/fileshell/pkg/fileshell/config"
)

// NewLogger creates a console logger writing to w at level. Shell output and
// log lines go to different streams, so w is normally stderr.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("lib", "fileshell").
		Logger()
}

// LogLevelFromString parses a case-insensitive level name.
func LogLevelFromString(levelStr string) (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(levelStr))
}

// NewLoggerFromConfig creates the session logger for cfg. Every line carries
// the configured username so logs of concurrent sessions can be told apart.
func NewLoggerFromConfig(w io.Writer, cfg *config.Config) (zerolog.Logger, error) {
	level, err := LogLevelFromString(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger := NewLogger(w, level)
	if cfg.Username != "" {
		logger = logger.With().Str("user", cfg.Username).Logger()
	}
	return logger, nil
}
