package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
)

// Setup configures the global slog logger.
// Console output goes to stderr so that stdout stays clean for command output.
// If logOutputDir is non-empty, logs are also written as JSON to a timestamped file in that directory.
// The returned function closes the log file, if any.
func Setup(levelStr string, logOutputDir string) (func() error, error) {
	logger, closeFn, err := New(os.Stderr, levelStr, logOutputDir)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closeFn, nil
}

// New builds a logger writing to console, and to a file when logOutputDir is set.
func New(console io.Writer, levelStr string, logOutputDir string) (*slog.Logger, func() error, error) {
	level := parseLogLevel(levelStr)

	consoleHandler := tint.NewHandler(console, &tint.Options{
		Level:   level,
		NoColor: !isTerminal(console),
	})

	if logOutputDir == "" {
		return slog.New(consoleHandler), func() error { return nil }, nil
	}

	logDir := os.ExpandEnv(logOutputDir)

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	logFileName := fmt.Sprintf("steamaffinity_%s.log", timestamp)
	logFilePath := filepath.Join(logDir, logFileName)

	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create log file: %w", err)
	}

	fileHandler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level})

	logger := slog.New(
		slogmulti.Fanout(consoleHandler, fileHandler),
	)
	logger.Debug("logging to file", "path", logFilePath)

	return logger, logFile.Close, nil
}

// parseLogLevel converts a string log level to slog.Level
func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "trace", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
