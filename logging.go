package sparks

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Logger is the logging resource systems and modules write through.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Level orders log lines by severity. Warn and above go to the error sink.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (lv Level) String() string {
	switch lv {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL%d", int(lv))
}

// DefaultLogger writes "[prefix] LEVEL: message" lines through the log
// package. Debug lines are dropped unless debug is enabled; the switch may be
// flipped from any goroutine.
type DefaultLogger struct {
	debug atomic.Bool
	tag   string
	out   *log.Logger
	err   *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewLoggerWithWriters(prefix, debug, os.Stdout, os.Stderr)
}

// NewLoggerWithWriters sends debug and info lines to out, warnings and errors
// to errOut.
func NewLoggerWithWriters(prefix string, debug bool, out, errOut io.Writer) *DefaultLogger {
	const flags = log.LstdFlags | log.Lmicroseconds
	l := &DefaultLogger{
		out: log.New(out, "", flags),
		err: log.New(errOut, "", flags),
	}
	if prefix != "" {
		l.tag = "[" + prefix + "] "
	}
	l.debug.Store(debug)
	return l
}

func (l *DefaultLogger) DebugEnabled() bool        { return l.debug.Load() }
func (l *DefaultLogger) SetDebug(enabled bool)     { l.debug.Store(enabled) }
func (l *DefaultLogger) Debugf(f string, a ...any) { l.logf(LevelDebug, f, a...) }
func (l *DefaultLogger) Infof(f string, a ...any)  { l.logf(LevelInfo, f, a...) }
func (l *DefaultLogger) Warnf(f string, a ...any)  { l.logf(LevelWarn, f, a...) }
func (l *DefaultLogger) Errorf(f string, a ...any) { l.logf(LevelError, f, a...) }

func (l *DefaultLogger) logf(level Level, format string, args ...any) {
	if level == LevelDebug && !l.debug.Load() {
		return
	}
	sink := l.out
	if level >= LevelWarn {
		sink = l.err
	}
	sink.Print(l.tag + level.String() + ": " + fmt.Sprintf(format, args...))
}

// LoggingModule installs a DefaultLogger on stdout/stderr as a resource.
type LoggingModule struct {
	Prefix string
	Debug  bool
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	app.addResources(NewDefaultLogger(m.Prefix, m.Debug))
}

type nopLogger struct{}

func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool    { return false }
func (nopLogger) SetDebug(bool)         {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// Logger returns the installed Logger resource, or a no-op logger when there
// is none. It never returns nil.
func (app *App) Logger() Logger {
	if app == nil {
		return nopLogger{}
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return nopLogger{}
}
