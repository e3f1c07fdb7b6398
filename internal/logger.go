package internal

import (
	"io"
	"log/slog"
	"time"
)

// NewLogger builds the service logger. Production runs emit JSON with
// RFC3339Nano timestamps so log aggregation can parse them; everything
// else gets the human-readable text handler.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	lvl := new(slog.LevelVar)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.Set(slog.LevelInfo)
		slog.Default().Warn("unrecognized log level, defaulting to info", slog.String("value", level))
	}

	var h slog.Handler
	if env == "prod" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: lvl,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String("time", a.Value.Time().Format(time.RFC3339Nano))
				}
				return a
			},
		})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     lvl,
			AddSource: lvl.Level() == slog.LevelDebug,
		})
	}

	return slog.New(h).With(slog.String("service", "billing"))
}
