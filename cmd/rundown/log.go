package main

import (
	"fmt"
	"io"
)

type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
)

var logLevels = map[string]logLevel{
	"debug": levelDebug,
	"info":  levelInfo,
	"warn":  levelWarn,
	"error": levelError,
}

// logger writes prefixed lines: info and debug to stdout, warnings and
// errors to stderr.
type logger struct {
	stdout io.Writer
	stderr io.Writer
	level  logLevel
}

func newLogger(stdout, stderr io.Writer, level string) *logger {
	l, ok := logLevels[level]
	if !ok {
		l = levelInfo
	}
	return &logger{stdout: stdout, stderr: stderr, level: l}
}

// logDebug logs a debug message
func (l *logger) logDebug(format string, args ...interface{}) {
	if l.level <= levelDebug {
		fmt.Fprintf(l.stdout, "[DEBUG] "+format+"\n", args...)
	}
}

// logInfo logs an info message
func (l *logger) logInfo(format string, args ...interface{}) {
	if l.level <= levelInfo {
		fmt.Fprintf(l.stdout, "[INFO] "+format+"\n", args...)
	}
}

// logWarn logs a warning message
func (l *logger) logWarn(format string, args ...interface{}) {
	if l.level <= levelWarn {
		fmt.Fprintf(l.stderr, "[WARN] "+format+"\n", args...)
	}
}

// logError logs an error message
func (l *logger) logError(format string, args ...interface{}) {
	fmt.Fprintf(l.stderr, "[ERROR] "+format+"\n", args...)
}
