// Package logger builds configured slog loggers with JSON output for
// production and text output for development.
package logger
