// Package engine ties the pipeline capabilities together into the single
// entrypoint a build invokes. Configuration lives on an explicit *Engine
// value passed around by the caller rather than package-level globals.
package engine

import (
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/flowforge/flowforge/pkg/barrier"
	"github.com/flowforge/flowforge/pkg/cachestore"
	"github.com/flowforge/flowforge/pkg/depgraph"
	"github.com/flowforge/flowforge/pkg/filelist"
	"github.com/flowforge/flowforge/pkg/iocap"
	"github.com/flowforge/flowforge/pkg/logging"
	"github.com/flowforge/flowforge/pkg/matcher"
	"github.com/flowforge/flowforge/pkg/pathutil"
	"github.com/flowforge/flowforge/pkg/plugin"
	"github.com/flowforge/flowforge/pkg/process"
	"github.com/flowforge/flowforge/pkg/textenc"
	"github.com/flowforge/flowforge/pkg/vfile"
	"github.com/flowforge/flowforge/pkg/watch"
)

// Mode selects the engine's run mode, mirroring vfile.Mode but named at the
// engine level since it also controls watch-loop behavior that vfile itself
// has no notion of.
type Mode = vfile.Mode

const (
	ModeBuild   = vfile.ModeBuild
	ModePreview = vfile.ModePreview
	ModeClean   = vfile.ModeClean
	ModeWatch   = vfile.ModeWatch
)

// Engine bundles every capability a pipeline run needs: it is the thing
// cmd/flowforge constructs once per invocation and hands to the rule file
// that builds the pipeline.
type Engine struct {
	Mode       Mode
	WorkingDir string
	Logger     *logging.Logger
	Barrier    *barrier.Barrier
	Plugins    *plugin.Registry
	Cache      *cachestore.Store
	Deps       *depgraph.Graph
	IOPool     *iocap.Capability

	defaults vfile.Defaults

	mu    sync.Mutex
	lists []*filelist.FileList
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithMode sets the engine's run mode.
func WithMode(mode Mode) Option {
	return func(e *Engine) { e.Mode = mode }
}

// WithWorkingDir sets the directory patterns passed to Src are resolved
// against.
func WithWorkingDir(dir string) Option {
	return func(e *Engine) { e.WorkingDir = dir }
}

// WithLogger sets the engine's logger, propagated to every capability that
// accepts one.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) { e.Logger = logger }
}

// WithOverwrite toggles whether Dest/Save may clobber an existing file.
func WithOverwrite(overwrite bool) Option {
	return func(e *Engine) { e.defaults.Overwrite = overwrite }
}

// WithSourceMaps toggles source-map emission and its inline/external and
// content-inclusion variants.
func WithSourceMaps(enabled, inline, includeContent bool) Option {
	return func(e *Engine) {
		e.defaults.SourceMaps = enabled
		e.defaults.SourceMapInline = inline
		e.defaults.SourceMapIncludeContent = includeContent
	}
}

// WithEncoding sets the default text encoding new files assume absent an
// override, by name (e.g. "utf-8", "iso-8859-1").
func WithEncoding(name string) (Option, error) {
	enc, err := textenc.Lookup(name)
	if err != nil {
		return nil, err
	}
	return func(e *Engine) { e.defaults.Encoding = enc }, nil
}

// WithCache attaches a cache store, wiring it as both vfile's output-map
// recorder and the dependency graph's persistence backend.
func WithCache(store *cachestore.Store) Option {
	return func(e *Engine) { e.Cache = store }
}

// WithIOPoolSize creates a bounded worker pool of the given size for
// filesystem operations; size <= 0 runs everything synchronously.
func WithIOPoolSize(size int) Option {
	return func(e *Engine) {
		if size <= 0 {
			e.IOPool = iocap.New(nil)
			return
		}
		e.IOPool = iocap.New(iocap.NewPool(size))
	}
}

// New constructs an Engine, wiring the cache store (if any) into both the
// dependency graph's persistence and the per-file output-map recorder, and
// the matcher factory into every file's Defaults so Match/Src can resolve
// glob/regex/predicate patterns without vfile importing pkg/matcher's
// callers.
func New(opts ...Option) *Engine {
	e := &Engine{
		Mode:    ModeBuild,
		Logger:  logging.New(logging.LevelInfo),
		Plugins: plugin.Default,
		IOPool:  iocap.New(nil),
	}
	e.defaults.Encoding = textenc.Default
	e.defaults.Matcher = matcher.New

	for _, opt := range opts {
		opt(e)
	}

	e.Barrier = barrier.New(e.Logger)
	e.defaults.IO = e.IOPool
	e.defaults.WorkingDir = e.WorkingDir
	e.defaults.Mode = e.Mode

	if e.Cache != nil {
		e.defaults.Cache = e.Cache
		e.Deps = depgraph.New(e.Cache)
	} else {
		e.Deps = depgraph.New(nil)
	}
	e.defaults.Deps = e.Deps

	return e
}

// fileDefaults returns the vfile.Defaults every File constructed by Src
// shares.
func (e *Engine) fileDefaults() vfile.Defaults {
	return e.defaults
}

// Src globs the working directory for paths matching any of patterns
// (doublestar syntax, e.g. "src/**/*.js") and returns a FileList containing
// one vfile.File per match, already ended, the entrypoint a rule file uses
// to start a pipeline.
func (e *Engine) Src(patterns ...string) *filelist.FileList {
	list := filelist.New()

	seen := make(map[string]bool)
	for _, pattern := range patterns {
		full := pattern
		if e.WorkingDir != "" && !filepath.IsAbs(pattern) {
			full = filepath.Join(e.WorkingDir, pattern)
		}
		matches, err := doublestar.FilepathGlob(full)
		if err != nil {
			e.Logger.Warn(errors.Wrapf(err, "glob %s", pattern))
			continue
		}
		for _, path := range matches {
			if seen[path] {
				continue
			}
			seen[path] = true
			list.Add(vfile.New(vfile.Options{SrcPath: path, Path: path}, e.fileDefaults()))
		}
	}
	list.End()

	e.mu.Lock()
	e.lists = append(e.lists, list)
	e.mu.Unlock()

	return list
}

// Exec returns a filelist.Processor that shells out to name for each file,
// piping the file's buffer to the command's stdin and replacing it with
// stdout on success. opts.Logger defaults to the engine's logger when unset.
func (e *Engine) Exec(name string, args []string, opts process.Options) filelist.Processor {
	if opts.Logger == nil {
		opts.Logger = e.Logger
	}
	return process.Processor(name, args, opts)
}

// Clean removes every output the cache store has on record, the engine's
// equivalent of running a pipeline in ModeClean against past runs rather
// than the current source tree, useful when source files that used to exist
// have since been deleted so a normal Src glob would never find them.
func (e *Engine) Clean(cb func(error)) {
	if e.Cache == nil {
		cb(nil)
		return
	}
	sources := e.Cache.AllSources()
	if len(sources) == 0 {
		cb(nil)
		return
	}
	var total int64
	for _, src := range sources {
		total += int64(len(e.Cache.Outputs(src)))
	}
	if total == 0 {
		cb(nil)
		return
	}

	pending := total
	var firstErr error
	var mu sync.Mutex
	finish := func(err error) {
		mu.Lock()
		if err != nil && firstErr == nil {
			firstErr = err
		}
		pending--
		done := pending == 0
		mu.Unlock()
		if done {
			if firstErr == nil {
				firstErr = e.Cache.Flush()
			}
			cb(firstErr)
		}
	}

	for _, src := range sources {
		src := src
		for _, out := range e.Cache.Outputs(src) {
			// SrcPath is the path Delete actually removes, so it must be the
			// built output, not the original source file.
			f := vfile.New(vfile.Options{SrcPath: out}, e.fileDefaults())
			f.DeleteWithOptions(true, func(err error) {
				if err == nil {
					e.Cache.ForgetOutputs(src)
				}
				finish(err)
			})
		}
	}
}

// Watch starts a recursive watcher rooted at the engine's working directory
// and feeds every batch of changed paths through the dependency graph,
// invoking onRebuild/onRefresh with the sources each batch implicates. The
// watcher runs in the background; callers terminate it via the returned
// watch.Watcher.
func (e *Engine) Watch(onRebuild, onRefresh func(sources []string)) (*watch.Watcher, error) {
	root := e.WorkingDir
	if root == "" {
		root = "."
	}
	w, err := watch.New(root)
	if err != nil {
		return nil, errors.Wrap(err, "start watcher")
	}

	go func() {
		for batch := range w.Events() {
			rebuildSet := make(map[string]bool)
			refreshSet := make(map[string]bool)
			for _, path := range batch {
				rel, relErr := pathutil.Relative(root, path)
				if relErr != nil {
					rel = path
				}
				rebuild, refresh := e.Deps.OnEvent(rel)
				for _, src := range rebuild {
					rebuildSet[src] = true
				}
				for _, src := range refresh {
					if !rebuildSet[src] {
						refreshSet[src] = true
					}
				}
			}
			if len(rebuildSet) > 0 && onRebuild != nil {
				onRebuild(keys(rebuildSet))
			}
			if len(refreshSet) > 0 && onRefresh != nil {
				onRefresh(keys(refreshSet))
			}
		}
	}()

	return w, nil
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
