// Package logger provides structured logging for telemhist.
//
// It wraps the standard library log/slog to provide structured JSON
// logging with dynamic level control and context-aware request id
// propagation. The flight computer target logs to stderr; the format
// switches to text for bench work.
package logger
