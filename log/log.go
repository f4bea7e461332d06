// Package log declares the logger used by the tool layer and commands
package log

// Logger is a leveled, printf-style logger
type Logger interface {
	Infof(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	Info(args ...interface{})
	Debug(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
}

// Discard drops everything
var Discard Logger = discard{}

type discard struct{}

func (discard) Infof(format string, args ...interface{}) {}
func (discard) Debugf(format string, args ...interface{}) {}
func (discard) Warnf(format string, args ...interface{}) {}
func (discard) Errorf(format string, args ...interface{}) {}
func (discard) Info(args ...interface{}) {}
func (discard) Debug(args ...interface{}) {}
func (discard) Warn(args ...interface{}) {}
func (discard) Error(args ...interface{}) {}
