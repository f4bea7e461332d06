package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/xhd2015/dte-mcp/log"
)

type logger struct {
	mu     sync.Mutex
	writer io.Writer
}

var _ log.Logger = &logger{}

func (l *logger) Infof(format string, args ...interface{}) {
	l.writeLog("INFO", fmt.Sprintf(format, args...))
}

func (l *logger) Debugf(format string, args ...interface{}) {
	l.writeLog("DEBUG", fmt.Sprintf(format, args...))
}

func (l *logger) Warnf(format string, args ...interface{}) {
	l.writeLog("WARN", fmt.Sprintf(format, args...))
}

func (l *logger) Errorf(format string, args ...interface{}) {
	l.writeLog("ERROR", fmt.Sprintf(format, args...))
}

func (l *logger) Info(args ...interface{}) {
	l.writeLog("INFO", fmt.Sprint(args...))
}

func (l *logger) Debug(args ...interface{}) {
	l.writeLog("DEBUG", fmt.Sprint(args...))
}

func (l *logger) Warn(args ...interface{}) {
	l.writeLog("WARN", fmt.Sprint(args...))
}

func (l *logger) Error(args ...interface{}) {
	l.writeLog("ERROR", fmt.Sprint(args...))
}

// writeLog emits one line; tool handlers may run concurrently
func (l *logger) writeLog(level string, msg string) {
	now := time.Now().Format("2006-01-02 15:04:05")

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.writer, "%s %s %s\n", now, level, msg)
}
