// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the interface that is used to keep a record of all events
// that happen to the program
type Logger interface {
	// Fatal that the program is reaching an unrecoverable state
	Fatal(format string, args ...interface{})
	// Error that the program has encountered, but can recover from
	Error(format string, args ...interface{})
	// Warn that something has gone unexpectedly, but likely harmlessly
	Warn(format string, args ...interface{})
	// Info the operator of anything they may care about
	Info(format string, args ...interface{})
	// Debug messages useful when tracking down issues
	Debug(format string, args ...interface{})
	// Verbo messages, normally far too spammy to keep enabled
	Verbo(format string, args ...interface{})

	// Stop any ongoing logging and flush buffered entries
	Stop()
}

// Level is the verbosity of a logger
type Level zapcore.Level

// The levels, most severe first
const (
	Fatal Level = Level(zapcore.FatalLevel)
	Error Level = Level(zapcore.ErrorLevel)
	Warn  Level = Level(zapcore.WarnLevel)
	Info  Level = Level(zapcore.InfoLevel)
	Debug Level = Level(zapcore.DebugLevel)
	Verbo Level = Level(zapcore.DebugLevel - 1)
)

// ToLevel parses a level from its display name
func ToLevel(s string) (Level, error) {
	switch s {
	case "fatal":
		return Fatal, nil
	case "error":
		return Error, nil
	case "warn":
		return Warn, nil
	case "info":
		return Info, nil
	case "debug":
		return Debug, nil
	case "verbo":
		return Verbo, nil
	default:
		return Info, fmt.Errorf("unknown log level: %q", s)
	}
}

type log struct {
	level Level
	inner *zap.SugaredLogger
}

// NewLogger returns a logger named [name] that writes entries at or above
// [level] to stderr
func NewLogger(name string, level Level) Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(max(level, Level(zapcore.DebugLevel))))
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	inner, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return &log{
		level: level,
		inner: inner.Named(name).WithOptions(zap.AddCallerSkip(1)).Sugar(),
	}
}

func (l *log) Fatal(format string, args ...interface{}) {
	l.inner.Fatalf(format, args...)
}

func (l *log) Error(format string, args ...interface{}) {
	l.inner.Errorf(format, args...)
}

func (l *log) Warn(format string, args ...interface{}) {
	l.inner.Warnf(format, args...)
}

func (l *log) Info(format string, args ...interface{}) {
	l.inner.Infof(format, args...)
}

func (l *log) Debug(format string, args ...interface{}) {
	l.inner.Debugf(format, args...)
}

// Verbo entries are logged through zap's debug level; the extra level only
// exists on our side of the fence.
func (l *log) Verbo(format string, args ...interface{}) {
	if l.level <= Verbo {
		l.inner.Debugf(format, args...)
	}
}

func (l *log) Stop() {
	_ = l.inner.Sync()
}
