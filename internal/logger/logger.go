package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the component-tagged structured logger shared by every package.
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
	Info(component, message string, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}

// ParseLevel maps a textual level to a zerolog level. Unknown or empty
// values fall back to the environment, then to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "":
		return LevelFromEnv()
	default:
		return zerolog.InfoLevel
	}
}

// LevelFromEnv reads LOG_LEVEL, honouring DEBUG=1 as a shortcut.
func LevelFromEnv() zerolog.Level {
	if env := strings.TrimSpace(os.Getenv("LOG_LEVEL")); env != "" {
		return ParseLevel(env)
	}
	if os.Getenv("DEBUG") == "1" {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

type nopLogger struct{}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(string, string, map[string]interface{})   {}
func (nopLogger) Info(string, string, map[string]interface{})    {}
func (nopLogger) Warning(string, string, map[string]interface{}) {}
func (nopLogger) Error(string, error, map[string]interface{})    {}
