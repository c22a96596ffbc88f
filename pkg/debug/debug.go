// Package debug provides global debug logging flags
package debug

import "github.com/teslashibe/go-bodyscan/internal/log"

// Enabled controls whether debug logging is active
var Enabled bool

// Frames controls whether per-frame scan traces are logged (anchor rows,
// widths, stability). Very verbose: one line per processed frame.
// Use --debug-frames to enable.
var Frames bool

// Log logs a message only if debug mode is enabled
func Log(msg string, args ...any) {
	if Enabled {
		log.Debug(msg, args...)
	}
}

// Frame logs a per-frame trace only if frame tracing is enabled
func Frame(msg string, args ...any) {
	if Frames {
		log.Debug(msg, args...)
	}
}
