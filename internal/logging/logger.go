package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the handler encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type config struct {
	w      io.Writer
	format Format
}

// Option configures New.
type Option func(*config)

// WithWriter sends records to w instead of Stderr.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.w = w
	}
}

// WithFormat switches between text and JSON records.
func WithFormat(f Format) Option {
	return func(c *config) {
		c.format = f
	}
}

// New creates a configured application logger.
// It writes to Stderr so stdout stays free for reports and the MCP stdio
// transport. It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level, opts ...Option) *slog.Logger {
	c := config{w: os.Stderr, format: FormatText}
	for _, opt := range opts {
		opt(&c)
	}

	handlerOpts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if c.format == FormatJSON {
		return slog.New(slog.NewJSONHandler(c.w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(c.w, handlerOpts))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseFormat resolves a format name; empty means FormatText.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown log format %q", name)
}
