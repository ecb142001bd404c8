package logger

import (
	"fmt"
	"log"
	"os"
)

// Logger is a small leveled wrapper around the standard library logger.
// Every service gets its own instance tagged with the service name.
type Logger struct {
	service string
	std     *log.Logger
}

func New(service string) *Logger {
	return &Logger{
		service: service,
		std:     log.New(os.Stdout, "", log.LstdFlags|log.LUTC),
	}
}

func (l *Logger) output(level, msg string) {
	l.std.Printf("[%s] %s: %s", level, l.service, msg)
}

func (l *Logger) Info(args ...interface{}) {
	l.output("INFO", fmt.Sprint(args...))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.output("INFO", fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(args ...interface{}) {
	l.output("WARN", fmt.Sprint(args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.output("WARN", fmt.Sprintf(format, args...))
}

func (l *Logger) Error(args ...interface{}) {
	l.output("ERROR", fmt.Sprint(args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.output("ERROR", fmt.Sprintf(format, args...))
}

func (l *Logger) Fatal(args ...interface{}) {
	l.output("FATAL", fmt.Sprint(args...))
	os.Exit(1)
}

func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.output("FATAL", fmt.Sprintf(format, args...))
	os.Exit(1)
}
