// Package monitoring holds the diagnostic loggers shared by the report
// packages. Diagnostics go to stderr so stdout carries only the report.
package monitoring

import (
	"log"
	"os"
)

var std = log.New(os.Stderr, "stats-report: ", log.LstdFlags)

// Logf is the package-level diagnostic logger. It may be replaced by
// SetLogger; tests use that to capture or mute output.
var Logf func(format string, v ...interface{}) = std.Printf

var verbose bool

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetVerbose enables Debugf output.
func SetVerbose(on bool) {
	verbose = on
}

// Debugf logs through Logf only when verbose output is enabled.
func Debugf(format string, v ...interface{}) {
	if verbose {
		Logf(format, v...)
	}
}
