package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
)

// writer is an io.Writer that splits its input stream into lines and writes
// those lines to an underlying logger.
type writer struct {
	// callback is the logging callback.
	callback func(string)
	// buffer is any incomplete line fragment left over from a previous write.
	buffer []byte
}

// trimCarriageReturn trims any single trailing carriage return from the end of
// a byte slice.
func trimCarriageReturn(buffer []byte) []byte {
	if len(buffer) > 0 && buffer[len(buffer)-1] == '\r' {
		return buffer[:len(buffer)-1]
	}
	return buffer
}

// Write implements io.Writer.Write.
func (w *writer) Write(buffer []byte) (int, error) {
	// Append the data to our internal buffer.
	w.buffer = append(w.buffer, buffer...)

	// Process all lines in the buffer, tracking the number of bytes that we
	// process.
	var processed int
	remaining := w.buffer
	for {
		// Find the index of the next newline character.
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}

		// Process the line.
		w.callback(string(trimCarriageReturn(remaining[:index])))

		// Update the number of bytes that we've processed.
		processed += index + 1

		// Update the remaining slice.
		remaining = remaining[index+1:]
	}

	// If we managed to process bytes, then truncate our internal buffer.
	if processed > 0 {
		// Compute the number of leftover bytes.
		leftover := len(w.buffer) - processed

		// If there are leftover bytes, then shift them to the front of the
		// buffer.
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}

		// Truncate the buffer.
		w.buffer = w.buffer[:leftover]
	}

	// Done.
	return len(buffer), nil
}

// Logger is the engine's leveled, colorized logger. It also doubles as a
// progress tracker via Begin/End. It has the novel property (kept from the
// original logger this is adapted from) that it still functions if nil, but
// doesn't log anything, so capabilities can hand out a possibly-nil *Logger
// without every caller checking first. It is safe for concurrent use.
type Logger struct {
	// prefix is any prefix specified for the logger.
	prefix string
	// level is the most verbose level that will be emitted.
	level Level
	// nextID supplies progress span identifiers.
	nextID uint64
	// spans tracks open progress labels, keyed by ProgressID.
	spans sync.Map
}

// ProgressID identifies an open progress span started by Begin.
type ProgressID uint64

// New creates a root logger at the given level.
func New(level Level) *Logger {
	return &Logger{level: level}
}

// Discard returns a logger that drops everything. It is distinct from a nil
// *Logger only in that it is always safe to call methods on directly.
func Discard() *Logger {
	return &Logger{level: LevelDisabled}
}

// Sublogger creates a new sublogger with the specified name, inheriting the
// parent's level.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{prefix: prefix, level: l.level}
}

// output is the internal logging method.
func (l *Logger) output(calldepth int, line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	log.Output(calldepth, line)
}

func (l *Logger) enabled(level Level) bool {
	return l != nil && level <= l.level && l.level != LevelDisabled
}

// Debugf logs at LevelDebug with fmt.Printf semantics.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Infof logs at LevelInfo with fmt.Printf semantics.
func (l *Logger) Infof(format string, v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Warningf logs at LevelWarn, colorized yellow.
func (l *Logger) Warningf(format string, v ...interface{}) {
	if l.enabled(LevelWarn) {
		l.output(3, color.YellowString(fmt.Sprintf(format, v...)))
	}
}

// Errorf logs at LevelError, colorized red.
func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.enabled(LevelError) {
		l.output(3, color.RedString(fmt.Sprintf(format, v...)))
	}
}

// Warn logs an error at LevelWarn with a "Warning:" prefix.
func (l *Logger) Warn(err error) {
	if l.enabled(LevelWarn) {
		l.output(3, color.YellowString("Warning: %v", err))
	}
}

// Error logs an error at LevelError with an "Error:" prefix.
func (l *Logger) Error(err error) {
	if l.enabled(LevelError) {
		l.output(3, color.RedString("Error: %v", err))
	}
}

// Writer returns an io.Writer that writes lines using Infof.
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return io.Discard
	}
	return &writer{callback: func(s string) { l.Infof("%s", s) }}
}

// DebugWriter returns an io.Writer that writes lines using Debugf.
func (l *Logger) DebugWriter() io.Writer {
	if l == nil {
		return io.Discard
	}
	return &writer{callback: func(s string) { l.Debugf("%s", s) }}
}

// Begin opens a progress span identified by label and returns a ProgressID
// to pass to End. Spans are purely a logging/UI concept; the build proceeds
// whether or not a span is ever closed.
func (l *Logger) Begin(label string, args ...interface{}) ProgressID {
	if l == nil {
		return 0
	}
	id := ProgressID(atomic.AddUint64(&l.nextID, 1))
	l.spans.Store(id, label)
	l.Infof("%s", Format(label, args...)+" ...")
	return id
}

// End closes a progress span previously returned by Begin.
func (l *Logger) End(id ProgressID) {
	if l == nil {
		return
	}
	if label, ok := l.spans.LoadAndDelete(id); ok {
		l.Infof("%s done", label)
	}
}
