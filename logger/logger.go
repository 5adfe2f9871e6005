package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
	LevelSilent
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelError:
		return "ERROR"
	default:
		return "SILENT"
	}
}

// ParseLevel accepts debug, info, error or silent in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "error":
		return LevelError, nil
	case "silent", "off", "none":
		return LevelSilent, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

type DefaultLogger struct {
	mu    sync.Mutex
	name  string
	level Level
	out   *log.Logger
}

func NewDefaultLogger(name string) *DefaultLogger {
	return &DefaultLogger{
		name:  name,
		level: LevelInfo,
		out:   log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (d *DefaultLogger) WithLevel(level Level) *DefaultLogger {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.level = level
	return d
}

func (d *DefaultLogger) WithWriter(w io.Writer) *DefaultLogger {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.out = log.New(w, "", log.LstdFlags)
	return d
}

func (d *DefaultLogger) Debug(format string, args ...any) {
	d.emit(LevelDebug, format, args...)
}

func (d *DefaultLogger) Info(format string, args ...any) {
	d.emit(LevelInfo, format, args...)
}

func (d *DefaultLogger) Error(format string, args ...any) {
	d.emit(LevelError, format, args...)
}

func (d *DefaultLogger) emit(level Level, format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if level < d.level {
		return
	}
	d.out.Printf("[%s] %s | %s", level, d.name, fmt.Sprintf(format, args...))
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}
