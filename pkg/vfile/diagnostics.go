package vfile

import "github.com/flowforge/flowforge/pkg/sourcemap"

// DiagnosticLevel is the severity of a LogEntry.
type DiagnosticLevel uint8

const (
	// LevelWarning marks a recoverable problem.
	LevelWarning DiagnosticLevel = iota
	// LevelError marks a diagnostic that fails the build.
	LevelError
)

// Position is a location within a file's content with a one-based line and a
// zero-based column, the form diagnostics are reported in (distinct from
// sourcemap.Position, whose line is also zero-based).
type Position struct {
	Line   int
	Column int
}

// LogEntry is a diagnostic carrying an optional path, content snippet, and
// start/end position. Its reference to a source map is by path, not by
// pointer, to avoid a File ↔ LogEntry ↔ Builder reference cycle.
type LogEntry struct {
	Level         DiagnosticLevel
	Message       string
	Path          string
	Content       string
	StartLine     int
	StartColumn   int
	EndLine       int
	EndColumn     int
	HasEnd        bool
	SourceMapPath string
}

// newLogEntryForFile builds a LogEntry against f, rewriting the position
// through f's source map to the original source when one is attached: if
// the end position maps to a different source than the start, the end
// position is dropped.
func newLogEntryForFile(f *File, level DiagnosticLevel, message string, loc []Position) *LogEntry {
	entry := &LogEntry{
		Level:   level,
		Message: message,
		Path:    f.Path(),
	}
	if len(loc) > 0 {
		entry.StartLine, entry.StartColumn = loc[0].Line, loc[0].Column
	}
	if len(loc) > 1 {
		entry.EndLine, entry.EndColumn = loc[1].Line, loc[1].Column
		entry.HasEnd = true
	}

	builder, ok := f.currentSourceMapBuilder()
	if !ok {
		return entry
	}
	entry.SourceMapPath = f.Path()

	startOrigin, ok := builder.GetSource(sourcemap.Position{Line: entry.StartLine - 1, Column: entry.StartColumn})
	if !ok {
		return entry
	}
	entry.Path = startOrigin.SourcePath
	if startOrigin.HasContent {
		entry.Content = startOrigin.SourceContent
	}
	entry.StartLine, entry.StartColumn = startOrigin.Position.Line+1, startOrigin.Position.Column

	if entry.HasEnd {
		endOrigin, ok := builder.GetSource(sourcemap.Position{Line: entry.EndLine - 1, Column: entry.EndColumn})
		if !ok || endOrigin.SourcePath != startOrigin.SourcePath {
			entry.HasEnd = false
			entry.EndLine, entry.EndColumn = 0, 0
		} else {
			entry.EndLine, entry.EndColumn = endOrigin.Position.Line+1, endOrigin.Position.Column
		}
	}

	return entry
}

func (f *File) currentSourceMapBuilder() (*sourcemap.Builder, bool) {
	f.mu.Lock()
	data := f.sourceMapData
	have := f.haveSourceMap
	f.mu.Unlock()
	if !have {
		return nil, false
	}
	builder, err := data.Builder()
	if err != nil || builder == nil {
		return nil, false
	}
	return builder, true
}
