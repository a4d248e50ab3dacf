package filelist

import (
	"fmt"
	"sync/atomic"

	"github.com/flowforge/flowforge/pkg/vfile"
)

// Processor is anything Pipe can adapt into a transformation stage. Go has
// no class/arity introspection, so dispatch is a type switch over named
// adapter types instead of runtime reflection on function shape.
type Processor any

// PluginName selects a processor by name, resolved through DefaultResolver
// (wired by pkg/plugin at init time; kept as a package variable here rather
// than an import to avoid filelist depending on plugin, which itself builds
// processors that satisfy Processor).
type PluginName string

// DefaultResolver resolves a PluginName to a concrete Processor. It is nil
// until pkg/plugin is imported, which installs its registry lookup here.
var DefaultResolver func(name string) (Processor, error)

// Factory constructs a downstream FileList from pipe options.
type Factory func(PipeOptions) *FileList

// SyncFunc runs once per file, synchronously, after the file has loaded.
type SyncFunc func(f *vfile.File) error

// AsyncFunc runs once per file; the processor signals completion via done.
type AsyncFunc func(f *vfile.File, done func(error))

// WholeListFunc runs once after the upstream list ends, processing files
// one at a time (serially, to preserve user-visible ordering) and signaling
// per-file completion via done.
type WholeListFunc func(files []*vfile.File, done func(f *vfile.File, err error))

// PipeOptions are the options passed to a pipe stage. Each Pipe call builds
// a fresh map and hands it to a Factory processor; the other adapters do not
// receive it.
type PipeOptions map[string]any

// PipeOption mutates a PipeOptions value being built for a Pipe call.
type PipeOption func(PipeOptions)

// WithOption sets a single key in the options passed to a pipe stage.
func WithOption(key string, value any) PipeOption {
	return func(o PipeOptions) { o[key] = value }
}

// Pipe adapts processor into a transformation stage and returns the
// downstream FileList.
func (l *FileList) Pipe(processor Processor, opts ...PipeOption) *FileList {
	options := PipeOptions{}
	for _, opt := range opts {
		opt(options)
	}

	switch p := processor.(type) {
	case PluginName:
		if DefaultResolver == nil {
			out := New()
			out.failAll(fmt.Errorf("filelist: no plugin resolver configured for %q", string(p)))
			return out
		}
		resolved, err := DefaultResolver(string(p))
		if err != nil {
			out := New()
			out.failAll(err)
			return out
		}
		return l.Pipe(resolved, opts...)

	case Factory:
		return l.pipeFactory(p, options)

	case *FileList:
		return l.pipeForward(p)

	case SyncFunc:
		return l.pipeSync(p)

	case AsyncFunc:
		return l.pipeAsync(p)

	case WholeListFunc:
		return l.pipeWholeList(p)

	default:
		out := New()
		out.failAll(fmt.Errorf("filelist: unsupported processor type %T", processor))
		return out
	}
}

// failAll immediately ends an empty list; used when Pipe can't adapt its
// processor argument, so pipeline construction never panics. err is
// discarded here because there is no file in the returned list to attach it
// to as a diagnostic; callers are expected to check the resolver/adapter
// error paths before relying on this fallback.
func (l *FileList) failAll(err error) {
	_ = err
	l.End()
}

func (l *FileList) pipeFactory(factory Factory, options PipeOptions) *FileList {
	out := factory(options)
	l.OnData(out.Add)
	l.OnEnd(func([]*vfile.File) { out.End() })
	return out
}

func (l *FileList) pipeForward(downstream *FileList) *FileList {
	l.OnData(downstream.Add)
	l.OnEnd(func([]*vfile.File) { downstream.End() })
	return downstream
}

func (l *FileList) pipeSync(fn SyncFunc) *FileList {
	out := New()
	l.OnData(func(f *vfile.File) {
		runRecovered(f, func() error { return fn(f) })
		out.Add(f)
	})
	l.OnEnd(func([]*vfile.File) { out.End() })
	return out
}

func (l *FileList) pipeAsync(fn AsyncFunc) *FileList {
	out := New()
	var pending int64 = 1 // the extra unit represents the upstream end itself

	finish := func() {
		if atomic.AddInt64(&pending, -1) == 0 {
			out.End()
		}
	}

	l.OnData(func(f *vfile.File) {
		atomic.AddInt64(&pending, 1)
		done := func(err error) {
			if err != nil {
				f.Error(err.Error())
			}
			out.Add(f)
			finish()
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					f.Error(fmt.Sprintf("panic: %v", r))
					done(nil)
				}
			}()
			fn(f, done)
		}()
	})
	l.OnEnd(func([]*vfile.File) { finish() })
	return out
}

// pipeWholeList hands fn the entire upstream file set exactly once, after
// the upstream end, and trusts fn to call done for each file in whatever
// order it chooses to process them internally. The stage's own job is only
// to forward completed files downstream and to end the downstream list once
// every file has reported.
func (l *FileList) pipeWholeList(fn WholeListFunc) *FileList {
	out := New()
	l.OnEnd(func(files []*vfile.File) {
		if len(files) == 0 {
			out.End()
			return
		}
		var completed int64
		total := int64(len(files))
		done := func(f *vfile.File, err error) {
			if err != nil && f != nil {
				f.Error(err.Error())
			}
			if f != nil {
				out.Add(f)
			}
			if atomic.AddInt64(&completed, 1) == total {
				out.End()
			}
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					for _, f := range files {
						f.Error(fmt.Sprintf("panic: %v", r))
					}
					out.End()
				}
			}()
			fn(files, done)
		}()
	})
	return out
}

func runRecovered(f *vfile.File, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			f.Error(fmt.Sprintf("panic: %v", r))
		}
	}()
	if err := fn(); err != nil {
		f.Error(err.Error())
	}
}
