package internal

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	LogFieldRequestID = "request_id"
	LogFieldUserID    = "user_id"
	LogFieldState     = "state"
)

// NewLogger builds a slog logger writing to w. format is "text" or "json".
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("log format %q is not supported", format)
}

// MessageLogger annotates l with the ids of msg.
func MessageLogger(l *slog.Logger, msg Message) *slog.Logger {
	return l.With(
		slog.String(LogFieldRequestID, msg.ID),
		slog.Int64(LogFieldUserID, msg.UserID),
	)
}

// DiscardLogger drops everything, handy in tests.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
