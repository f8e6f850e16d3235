// Package log holds the process-wide logger the library falls back on
// when a connection was not given one. The default sink discards
// everything; programs that want the library's records call SetLogger
// once at startup. Levels are the logger's business — the library never
// filters records itself.
package log

import (
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Severity mirrors the classic syslog-style vocabulary the event socket
// protocol uses for log/data payloads.
type Severity int

const (
	SeverityEmerg Severity = iota
	SeverityAlert
	SeverityCrit
	SeverityError
	SeverityWarning
	SeverityNotice
	SeverityInfo
	SeverityDebug
)

func (s Severity) String() string {
	switch s {
	case SeverityEmerg:
		return "EMERG"
	case SeverityAlert:
		return "ALERT"
	case SeverityCrit:
		return "CRIT"
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityNotice:
		return "NOTICE"
	case SeverityInfo:
		return "INFO"
	case SeverityDebug:
		return "DEBUG"
	}
	return "INVALID"
}

// Level maps a Severity onto the logrus level that carries it.
func (s Severity) Level() logrus.Level {
	switch s {
	case SeverityEmerg, SeverityAlert, SeverityCrit, SeverityError:
		return logrus.ErrorLevel
	case SeverityWarning:
		return logrus.WarnLevel
	case SeverityNotice, SeverityInfo:
		return logrus.InfoLevel
	}
	return logrus.DebugLevel
}

// holder wraps the interface so atomic.Value sees one concrete type.
type holder struct {
	logger logrus.FieldLogger
}

var global atomic.Value // holder

func init() {
	silent := logrus.New()
	silent.SetOutput(io.Discard)
	global.Store(holder{logger: silent})
}

// Default returns the process-wide logger.
func Default() logrus.FieldLogger {
	return global.Load().(holder).logger
}

// SetLogger replaces the process-wide logger. A nil logger restores the
// silent default.
func SetLogger(logger logrus.FieldLogger) {
	if logger == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		logger = silent
	}
	global.Store(holder{logger: logger})
}

// At returns an entry tagged with the protocol severity, routed at the
// matching logrus level by the caller.
func At(s Severity) *logrus.Entry {
	return Default().WithField("severity", s.String())
}
