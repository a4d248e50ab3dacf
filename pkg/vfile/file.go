// Package vfile implements the engine's File type: one logical build
// artifact with lazily-decoded dual text/binary content, a propagated
// source map, and attached diagnostics.
package vfile

import (
	"io/fs"
	"sync"

	"github.com/flowforge/flowforge/pkg/iocap"
	"github.com/flowforge/flowforge/pkg/matcher"
	"github.com/flowforge/flowforge/pkg/pathutil"
	"github.com/flowforge/flowforge/pkg/sourcemap"
	"github.com/flowforge/flowforge/pkg/textenc"
)

// Mode selects the save/delete semantics a File's owning engine is running
// under.
type Mode uint8

const (
	// ModeBuild writes transformed content and source maps to disk.
	ModeBuild Mode = iota
	// ModePreview performs no observable disk I/O; Save reports success
	// without writing.
	ModePreview
	// ModeClean removes previously written artifacts: Save deletes the
	// file's target path and its sibling ".map" instead of writing.
	ModeClean
	// ModeWatch behaves like ModeBuild but is paired with pkg/watch and
	// pkg/depgraph for incremental rebuilds.
	ModeWatch
)

// DependencyRecorder is the capability a File delegates Dep/Ref calls to.
// It is satisfied structurally by *depgraph.Graph; vfile does not import
// depgraph to avoid a cycle (depgraph's log-entry tags reference vfile).
type DependencyRecorder interface {
	AddDep(src, target string, log *LogEntry)
	AddRef(src, target string, log *LogEntry)
}

// CacheRecorder is the capability Save delegates output-map bookkeeping to.
// It is satisfied structurally by *cachestore.Store.
type CacheRecorder interface {
	RecordOutput(srcPath, destPath string)
}

// ValidationHook is an optional per-save gate: if it returns false, Save is
// skipped silently.
type ValidationHook func(f *File) bool

// SourceMapJSONHook lets a caller override the serialized JSON of an emitted
// source map.
type SourceMapJSONHook func(f *File, object *sourcemap.Object, encoded string) string

// Defaults bundles the engine-wide fallbacks a File consults for anything it
// doesn't override itself.
type Defaults struct {
	Encoding            textenc.Encoding
	Mode                Mode
	Overwrite           bool
	SourceMaps          bool
	SourceMapInline     bool
	SourceMapIncludeContent bool
	WorkingDir          string
	Matcher             func(patterns ...interface{}) (matcher.Matcher, error)
	IO                  *iocap.Capability
	Deps                DependencyRecorder
	Cache               CacheRecorder
	Validate            ValidationHook
	SourceMapJSON       SourceMapJSONHook
	SourceMapSource     func(path string) string
	SourceMapSourceContent func(path string) (string, bool)
}

// Options configures a new File.
type Options struct {
	SrcPath string
	Path    string
	Data    any // string or []byte; populates a dest slot and marks modified.
}

// File is one logical build artifact.
type File struct {
	mu sync.Mutex

	srcPath string // immutable after construction
	path    string

	srcBuffer  []byte
	srcContent string
	haveSrcBuf bool
	haveSrcTxt bool

	destBuffer  []byte
	destContent string
	haveDestBuf bool
	haveDestTxt bool

	encodingOverride Option[textenc.Encoding]
	sourceMapData    sourcemap.Data
	haveSourceMap    bool

	errorCount   int
	warningCount int
	diagnostics  []*LogEntry

	sourceMapsOverride       Option[bool]
	sourceMapInlineOverride  Option[bool]
	sourceMapContentOverride Option[bool]

	indexes []int

	defaults Defaults
}

// New constructs a File. defaults supplies the engine-wide fallbacks used
// wherever the file itself has no override.
func New(opts Options, defaults Defaults) *File {
	f := &File{defaults: defaults}
	if opts.SrcPath != "" {
		f.srcPath = pathutil.Resolve(defaults.WorkingDir, opts.SrcPath)
	}
	if opts.Path != "" {
		f.path = pathutil.Resolve(defaults.WorkingDir, opts.Path)
	} else {
		f.path = f.srcPath
	}

	switch v := opts.Data.(type) {
	case string:
		f.SetContent(v)
	case []byte:
		f.SetBuffer(v)
	}

	return f
}

// SrcPath returns the absolute source path, or "" if the file is generated.
// It never changes after construction.
func (f *File) SrcPath() string {
	return f.srcPath
}

// Path returns the current target path.
func (f *File) Path() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path
}

// SetPath rewrites the target path; processors use this to change extension
// or relocate a file within the output tree.
func (f *File) SetPath(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.path = path
}

// Generated reports whether the file was synthesized rather than read from
// disk.
func (f *File) Generated() bool {
	return f.srcPath == ""
}

// Ext returns the extension of the current target path.
func (f *File) Ext() string {
	return pathutil.Ext(f.Path())
}

// SrcDir returns the directory of the source path.
func (f *File) SrcDir() string {
	return pathutil.Dir(f.srcPath)
}

// DestDir returns the directory of the current target path.
func (f *File) DestDir() string {
	return pathutil.Dir(f.Path())
}

// DestPath is an alias of Path kept for symmetry with SrcPath in callers
// that read from both.
func (f *File) DestPath() string {
	return f.Path()
}

// Modified reports whether any dest slot is populated or a source map has
// been attached.
func (f *File) Modified() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.haveDestBuf || f.haveDestTxt || f.haveSourceMap
}

// Exists reports whether the source file exists on disk. A generated file
// never exists.
func (f *File) Exists() bool {
	if f.Generated() {
		return false
	}
	return iocap.Exists(f.srcPath)
}

// Stat returns the source file's fs.FileInfo, if it exists.
func (f *File) Stat() (fs.FileInfo, bool) {
	if f.Generated() {
		return nil, false
	}
	info, ok, _ := iocap.Stat(f.srcPath)
	return info, ok
}

// Encoding returns the effective encoding for this file: its own override if
// set, else the engine default.
func (f *File) Encoding() textenc.Encoding {
	f.mu.Lock()
	defer f.mu.Unlock()
	fallback := f.defaults.Encoding
	if fallback.Name() == "" {
		fallback = textenc.Default
	}
	return f.encodingOverride.Get(fallback)
}

// SetEncoding installs a per-file encoding override.
func (f *File) SetEncoding(enc textenc.Encoding) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.encodingOverride.Set(enc)
}

// ErrorCount returns the number of error-level diagnostics attached.
func (f *File) ErrorCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errorCount
}

// WarningCount returns the number of warning-level diagnostics attached.
func (f *File) WarningCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.warningCount
}

// Diagnostics returns every log entry attached to this file, in attachment
// order.
func (f *File) Diagnostics() []*LogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*LogEntry, len(f.diagnostics))
	copy(out, f.diagnostics)
	return out
}

// Error attaches an error-level diagnostic built against this file, rewriting
// its position through the file's source map.
func (f *File) Error(message string, loc ...Position) *LogEntry {
	return f.attach(LevelError, message, loc)
}

// Warn attaches a warning-level diagnostic.
func (f *File) Warn(message string, loc ...Position) *LogEntry {
	return f.attach(LevelWarning, message, loc)
}

func (f *File) attach(level DiagnosticLevel, message string, loc []Position) *LogEntry {
	entry := newLogEntryForFile(f, level, message, loc)
	f.mu.Lock()
	f.diagnostics = append(f.diagnostics, entry)
	if level == LevelError {
		f.errorCount++
	} else if level == LevelWarning {
		f.warningCount++
	}
	f.mu.Unlock()
	return entry
}

// Match reports whether the file's current path matches the given patterns.
func (f *File) Match(patterns ...interface{}) (bool, error) {
	build := f.defaults.Matcher
	if build == nil {
		build = matcher.New
	}
	m, err := build(patterns...)
	if err != nil {
		return false, err
	}
	return m.Test(f.Path()), nil
}

// Clone copies paths and current data into a new File sharing the same
// defaults.
func (f *File) Clone() *File {
	f.mu.Lock()
	defer f.mu.Unlock()

	clone := &File{
		srcPath:                 f.srcPath,
		path:                    f.path,
		encodingOverride:        f.encodingOverride,
		sourceMapData:           f.sourceMapData,
		haveSourceMap:           f.haveSourceMap,
		sourceMapsOverride:      f.sourceMapsOverride,
		sourceMapInlineOverride: f.sourceMapInlineOverride,
		sourceMapContentOverride: f.sourceMapContentOverride,
		defaults:                f.defaults,
	}
	if f.haveDestBuf {
		clone.destBuffer = append([]byte(nil), f.destBuffer...)
		clone.haveDestBuf = true
	} else if f.haveDestTxt {
		clone.destContent = f.destContent
		clone.haveDestTxt = true
	} else if f.haveSrcBuf {
		clone.destBuffer = append([]byte(nil), f.srcBuffer...)
		clone.haveDestBuf = true
	} else if f.haveSrcTxt {
		clone.destContent = f.srcContent
		clone.haveDestTxt = true
	}
	return clone
}
