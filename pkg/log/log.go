// Package log is the small logging interface Core accepts from its
// host, so the emulator core never dictates a logging backend.
// Grounded on the teacher's pkg/log package.
package log

import "fmt"

// Logger is satisfied by most logging libraries' leveled-printf
// methods; hosts can adapt their own logger to it.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type stdLogger struct{}

// New returns a Logger that writes to stdout with a level prefix.
func New() Logger {
	return &stdLogger{}
}

func (l *stdLogger) Infof(format string, args ...interface{}) {
	fmt.Printf("[INFO]\t"+format+"\n", args...)
}

func (l *stdLogger) Errorf(format string, args ...interface{}) {
	fmt.Printf("[ERROR]\t"+format+"\n", args...)
}

func (l *stdLogger) Debugf(format string, args ...interface{}) {
	fmt.Printf("[DEBUG]\t"+format+"\n", args...)
}

type nullLogger struct{}

// NewNullLogger returns a Logger that discards everything; it's
// Core's default so embedding a logger is never required.
func NewNullLogger() Logger {
	return &nullLogger{}
}

func (nullLogger) Infof(string, ...interface{})  {}
func (nullLogger) Errorf(string, ...interface{}) {}
func (nullLogger) Debugf(string, ...interface{}) {}
