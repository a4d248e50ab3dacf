// Package plugin resolves a named processor either from a built-in registry
// populated by blank imports, or by dynamically loading a Go plugin shared
// object, the idiomatic Go analog of require()-style dynamic plugin loading.
package plugin

import (
	"os"
	"path/filepath"
	"plugin"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/flowforge/flowforge/pkg/filelist"
)

// Registry resolves processor names to filelist.Processor values. It holds
// both the built-in registrations (populated at init time via blank
// imports, e.g. `_ "example.com/plugins/minify"`) and the memoized results
// of dynamic `.so` loads.
type Registry struct {
	mu       sync.Mutex
	builtins map[string]filelist.Processor
	loaded   sync.Map // string -> filelist.Processor
	vendorDir string
}

// New creates an empty Registry. vendorDir is where bare (no path
// separator) plugin names are looked up as "<vendorDir>/<name>.so"; an
// empty vendorDir defaults to "./flowforge_plugins".
func New(vendorDir string) *Registry {
	if vendorDir == "" {
		vendorDir = "flowforge_plugins"
	}
	return &Registry{builtins: make(map[string]filelist.Processor), vendorDir: vendorDir}
}

// Register installs a built-in processor under name. Called from a package
// init function to register a processor at build time.
func (r *Registry) Register(name string, processor filelist.Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtins[name] = processor
}

// Resolve looks up name: built-ins first, then (for names containing a path
// separator or ending in ".so") a dynamically loaded plugin, memoized so
// repeated pipeline construction doesn't reopen the same shared object.
func (r *Registry) Resolve(name string) (filelist.Processor, error) {
	r.mu.Lock()
	builtin, ok := r.builtins[name]
	r.mu.Unlock()
	if ok {
		return builtin, nil
	}

	if cached, ok := r.loaded.Load(name); ok {
		return cached.(filelist.Processor), nil
	}

	path := r.resolvePath(name)
	if path == "" {
		return nil, errors.Errorf("plugin: no built-in or loadable processor named %q", name)
	}

	processor, err := loadDynamic(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load plugin %s", name)
	}
	r.loaded.Store(name, processor)
	return processor, nil
}

func (r *Registry) resolvePath(name string) string {
	if strings.ContainsAny(name, "/\\") || strings.HasSuffix(name, ".so") {
		return name
	}
	candidate := filepath.Join(r.vendorDir, name+".so")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// loadDynamic opens a Go plugin shared object and looks up its exported
// "Processor" symbol, which must itself be a filelist.Processor value
// (typically a filelist.SyncFunc, AsyncFunc, or WholeListFunc).
func loadDynamic(path string) (filelist.Processor, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	sym, err := p.Lookup("Processor")
	if err != nil {
		return nil, errors.Wrapf(err, "lookup Processor symbol in %s", path)
	}
	return sym, nil
}

// Default is the process-wide registry that filelist.DefaultResolver
// delegates to, populated by Register calls from built-in processor
// packages' init functions.
var Default = New("")

func init() {
	filelist.DefaultResolver = Default.Resolve
}
