package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/D-Marc1/Simple-MySQLi/internal/config"
)

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs the default slog logger: a console handler on stderr or
// stdout, plus an optional file handler with source locations.
func Setup(cfg config.LoggerConfigs) error {
	var handlers []slog.Handler

	console := os.Stderr
	if cfg.ConsoleOutput == "stdout" {
		console = os.Stdout
	}
	consoleOpts := &slog.HandlerOptions{Level: parseLevel(cfg.ConsoleLevel)}
	handlers = append(handlers, slog.NewTextHandler(console, consoleOpts))

	if cfg.FileOutput != "" {
		logFile, err := os.OpenFile(cfg.FileOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}

		fileOpts := &slog.HandlerOptions{
			Level:     parseLevel(cfg.FileLevel),
			AddSource: true,
		}
		handlers = append(handlers, slog.NewTextHandler(logFile, fileOpts))
	}

	slog.SetDefault(slog.New(NewMultiHandler(handlers...)))

	return nil
}
