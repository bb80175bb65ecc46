// Package logger sets up the slog logger used across the service.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// New sets up a *slog.Logger and returns it. Production gets JSON records,
// development gets text, both carry the given base attributes and a trimmed
// source location.
func New(level slog.Level, isProd bool, attrs ...slog.Attr) *slog.Logger {
	replacer := func(groups []string, a slog.Attr) slog.Attr {
		//we do not want the long file path, just the file name and line number
		if a.Key == slog.SourceKey {
			if source, ok := a.Value.Any().(*slog.Source); ok {
				return slog.Attr{
					Key:   slog.SourceKey,
					Value: slog.StringValue(fmt.Sprintf("file:%s:%d", filepath.Base(source.File), source.Line)),
				}
			}
		}
		return a
	}

	opts := &slog.HandlerOptions{
		AddSource:   true,
		Level:       level,
		ReplaceAttr: replacer,
	}

	var handler slog.Handler
	if isProd {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler.WithAttrs(attrs))
}
