// Package logging provides the small leveled logger shared by code that
// runs both standalone and inside the Nakama runtime.
package logging

import "log"

// Logger is the printf-style leveled logger transport-facing components log
// through. Nakama's runtime.Logger satisfies it structurally, so the same
// call sites compile into the plugin and the standalone server alike.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// StdLogger adapts the stdlib log package to Logger. Warn and Error always
// emit; Debug and Info are dropped unless verbose is set.
type StdLogger struct {
	verbose bool
}

// NewStdLogger builds the standalone binary's logger; verbose comes from
// the --verbose flag / BINGOSINK_VERBOSE.
func NewStdLogger(verbose bool) *StdLogger {
	return &StdLogger{verbose: verbose}
}

func (l *StdLogger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	log.Printf("DEBUG | "+format, args...)
}

func (l *StdLogger) Info(format string, args ...any) {
	if !l.verbose {
		return
	}
	log.Printf("INFO  | "+format, args...)
}

func (l *StdLogger) Warn(format string, args ...any) {
	log.Printf("WARN  | "+format, args...)
}

func (l *StdLogger) Error(format string, args ...any) {
	log.Printf("ERROR | "+format, args...)
}
