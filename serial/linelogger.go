// Package serial implements the default trace.Sink used to observe the
// test-ROM serial byte channel (§6 "Serial byte channel"). Grounded on
// jeebie/serial/logsink.go, which buffers printable bytes into lines and
// flushes them through a structured logger instead of writing raw bytes
// to stdout.
package serial

import (
	"log/slog"

	"github.com/valerio/dmgcore/trace"
)

// LineLogger implements trace.Sink. SerialByte calls are buffered until a
// newline (or NUL, which Blargg-style test ROMs use as a line terminator)
// and then flushed as a single structured log line, matching how the
// teacher's LogSink makes test ROM output readable.
type LineLogger struct {
	logger *slog.Logger
	line   []byte
}

// NewLineLogger returns a LineLogger writing through logger, or
// slog.Default() if logger is nil.
func NewLineLogger(logger *slog.Logger) *LineLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &LineLogger{logger: logger}
}

func (l *LineLogger) Message(msg string) {
	l.logger.Info(msg)
}

func (l *LineLogger) SerialByte(b byte) {
	if b == 0 || b == '\n' || b == '\r' {
		if len(l.line) > 0 {
			l.logger.Info("serial", "line", string(l.line))
			l.line = l.line[:0]
		}
		return
	}
	l.line = append(l.line, b)
}

func (l *LineLogger) CPUState(s trace.CPUState) {
	l.logger.Debug("cpu", "state", s.String())
}

var _ trace.Sink = (*LineLogger)(nil)
