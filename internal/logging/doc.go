// Package logging wraps log/slog with curator's two output formats: a
// human-oriented console handler and a machine-oriented JSON handler.
//
// The console handler prints one line per record with the component attr
// hoisted into the message prefix and the remaining attrs rendered as
// key=value pairs. NewFromConfig tees output to stdout/stderr plus a log file
// under the configured log directory.
//
// The Attr helpers mirror slog's constructors so call sites stay terse, and
// the Field* constants keep attribute keys consistent across components.
package logging
