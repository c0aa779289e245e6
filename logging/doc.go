// Package logging builds the slog loggers used by the whiteboard CLI and engine.
//
// Two formats are supported: a human readable console format that lifts the
// "component" attribute into the line header, and a JSON format suitable for
// log collectors. Console output is colorized when the destination is a terminal.
package logging
