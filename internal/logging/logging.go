// Package logging builds the root slog.Logger of the valuation binaries: a
// console handler (tint, JSON or text) optionally fanned out to Fluent Bit.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/lmittmann/tint"
)

// Formats accepted by Options.Format.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatColor = "color"
)

// Options configures New.
type Options struct {
	Writer    io.Writer
	Level     string
	Format    string
	AddSource bool

	Fluent *FluentOptions
}

// FluentOptions enables forwarding to Fluent Bit.
type FluentOptions struct {
	Host      string
	Port      int
	TagPrefix string
	Level     string
}

// ParseLevel maps debug|info|warn|error onto slog levels. Anything else is
// info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

// Console returns the console handler for opts.
func Console(opts Options) slog.Handler {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	level := ParseLevel(opts.Level)
	switch strings.ToLower(opts.Format) {
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: opts.AddSource})
	case FormatColor:
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  opts.AddSource,
			TimeFormat: "2006-01-02 15:04:05",
		})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, AddSource: opts.AddSource})
	}
}

// New builds the root logger. The returned close function flushes and closes
// the Fluent Bit client when one was created; it is never nil.
func New(opts Options) (*slog.Logger, func() error, error) {
	console := Console(opts)
	if opts.Fluent == nil {
		return slog.New(console), func() error { return nil }, nil
	}

	if opts.Fluent.TagPrefix == "" {
		return nil, nil, errors.New("logging: fluent tag prefix is required")
	}
	client, err := fluent.New(fluent.Config{
		FluentHost: opts.Fluent.Host,
		FluentPort: opts.Fluent.Port,
		TagPrefix:  opts.Fluent.TagPrefix,
		Async:      true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logging: create fluent client: %w", err)
	}
	handler := Fanout(console, NewFluentHandler(client, ParseLevel(opts.Fluent.Level)))
	return slog.New(handler), client.Close, nil
}

// Fanout sends every record to each handler that is enabled for it.
func Fanout(handlers ...slog.Handler) slog.Handler {
	var out []slog.Handler
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return multiHandler(out)
}

type multiHandler []slog.Handler

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithGroup(name)
	}
	return out
}
