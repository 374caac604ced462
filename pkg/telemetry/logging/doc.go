// Package logging configures the process-wide log/slog handler.
//
// Three formats are supported: "json" and "text" use the slog handlers,
// "console" uses a charmbracelet/log handler with "2006-01-02 15:04:05"
// timestamps, colored only when writing to a terminal.
//
// Code logs through the slog package functions with a context:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	logger.SetDefault()
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "chat called", "messages", 3) // includes request_id
//
// The level is held in a slog.LevelVar so SetLevel takes effect
// immediately, which the server uses on configuration reload.
package logging
