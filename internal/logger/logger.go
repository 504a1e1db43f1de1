package logger

import (
	"io"
	"log/slog"
	"os"
)

// InitLogger sets the default slog logger. Progress messages are logged at
// Info, so verbose=false hides everything below Warn.
func InitLogger(verbose bool) {
	slog.SetDefault(New(os.Stderr, verbose))
}

func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
