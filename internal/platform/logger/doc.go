// Package logger provides structured logging for the application.
//
// It builds JSON loggers on log/slog, installs the process-wide default and
// carries request-scoped loggers through context.
package logger
