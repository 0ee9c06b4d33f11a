// Package logging wires up the process-wide zerolog logger: a colored
// console writer plus a plain JSON file sink, both at the configured
// severity level. Call Setup once at startup before anything else logs.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog's global logger and returns it. component
// tags every event (e.g. "arbbot", "copybot") so a shared log file can be
// filtered by which binary produced a line. logDir may be empty, in which
// case only the console sink is used.
func Setup(component, level, logDir string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}

	var writer io.Writer = console
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return zerolog.Logger{}, fmt.Errorf("create log dir: %w", err)
		}
		name := fmt.Sprintf("bot-%s.log", time.Now().Format("2006-01-02"))
		f, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("open log file: %w", err)
		}
		writer = zerolog.MultiLevelWriter(console, f)
	}

	logger := zerolog.New(writer).Level(lvl).With().Timestamp().Str("component", component).Logger()
	log.Logger = logger
	return logger, nil
}
