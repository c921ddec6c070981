package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/BearBump/ParcelBox/config"
)

// setupLogging направляет логи в stderr (и в файл, если задан), чтобы
// не мешать перерисовке дашборда на stdout.
func setupLogging(cfg *config.Config) (func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}

	if cfg.ParcelBox.LogFile != "" {
		f, err := os.OpenFile(cfg.ParcelBox.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		w = io.MultiWriter(os.Stderr, f)
		closeFn = func() { _ = f.Close() }
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(cfg.ParcelBox.LogLevel)})
	slog.SetDefault(slog.New(h))
	return closeFn, nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
