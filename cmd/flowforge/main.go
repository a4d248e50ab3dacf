// Command flowforge is the CLI surface for the build engine: it wires
// command-line flags and an optional YAML config file into a pkg/engine
// Engine, loads the caller's build graph from a compiled Go plugin, and
// runs it under one of four modes.
//
// The root command uses a non-standard entry point that returns an error,
// wrapped into cobra's func(*cobra.Command, []string) shape so that deferred
// cleanup still runs before the process exits nonzero. Since this module
// ships a single binary, there's no need for a separate shared cmd library;
// the bridging helpers live directly in this package.
package main

import (
	"fmt"
	"os"
	"plugin"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/flowforge/flowforge/pkg/cachestore"
	"github.com/flowforge/flowforge/pkg/engine"
	"github.com/flowforge/flowforge/pkg/filelist"
	"github.com/flowforge/flowforge/pkg/logging"
	"github.com/flowforge/flowforge/pkg/vfile"
)

// rootFlags are the persistent flags shared by every subcommand, bound in
// an init function rather than captured in closures over cobra.Command.
var rootFlags struct {
	configPath      string
	rulesPath       string
	workingDir      string
	cacheDir        string
	overwrite       bool
	sourceMaps      bool
	noSourceMaps    bool
	sourceMapInline bool
	logLevel        string
}

var rootCommand = &cobra.Command{
	Use:   "flowforge",
	Short: "flowforge builds files through a rule-based transformation pipeline",
}

func init() {
	cobra.EnableCommandSorting = false

	flags := rootCommand.PersistentFlags()
	flags.StringVar(&rootFlags.configPath, "config", "flowforge.yml", "Path to the YAML configuration file")
	flags.StringVar(&rootFlags.rulesPath, "rules", "flowforge_rules.so", "Path to the compiled build-graph plugin")
	flags.StringVar(&rootFlags.workingDir, "dir", "", "Working directory patterns are resolved against (default: current directory)")
	flags.StringVar(&rootFlags.cacheDir, "cache-dir", ".flowforge/cache", "Directory for the on-disk build cache")
	flags.BoolVar(&rootFlags.overwrite, "overwrite", false, "Allow writing over existing destination files")
	flags.BoolVar(&rootFlags.sourceMaps, "sourcemap", true, "Emit source maps")
	flags.BoolVar(&rootFlags.noSourceMaps, "no-sourcemap", false, "Disable source map emission")
	flags.BoolVar(&rootFlags.sourceMapInline, "sourcemap-inline", false, "Emit source maps as inline data: URIs")
	flags.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (disabled, error, warn, info, debug)")

	rootCommand.AddCommand(buildCommand, watchCommand, cleanCommand, previewCommand)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}

// mainify wraps a non-standard Cobra entry point (one returning an error)
// into cobra's standard signature, bridging the returned error to a process
// exit code.
func mainify(entry func(*cobra.Command, []string) error) func(*cobra.Command, []string) {
	return func(command *cobra.Command, arguments []string) {
		if err := entry(command, arguments); err != nil {
			fatal(err)
		}
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

// buildEngine constructs the Engine common to every subcommand: config file
// (if present) combined with the flags, logger, and cache store. A boolean
// setting is on when either the config file or the flags turn it on; the
// plugins the config file lists are resolved here, before any pipeline runs.
func buildEngine(mode engine.Mode) (*engine.Engine, error) {
	level, ok := logging.NameToLevel(rootFlags.logLevel)
	if !ok {
		return nil, errors.Errorf("unknown log level %q", rootFlags.logLevel)
	}
	logger := logging.New(level)

	opts := []engine.Option{
		engine.WithMode(mode),
		engine.WithWorkingDir(rootFlags.workingDir),
		engine.WithLogger(logger),
		engine.WithOverwrite(rootFlags.overwrite),
	}

	sourceMaps := rootFlags.sourceMaps && !rootFlags.noSourceMaps
	opts = append(opts, engine.WithSourceMaps(sourceMaps, rootFlags.sourceMapInline, false))

	cfg, err := engine.Load(rootFlags.configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if cfg != nil {
		if cfg.Defaults.Encoding != "" {
			encOpt, err := engine.WithEncoding(cfg.Defaults.Encoding)
			if err != nil {
				return nil, err
			}
			opts = append(opts, encOpt)
		}
		opts = append(opts, engine.WithOverwrite(cfg.Defaults.Overwrite || rootFlags.overwrite))
		opts = append(opts, engine.WithSourceMaps(
			cfg.Defaults.SourceMaps || sourceMaps,
			cfg.Defaults.SourceMapInline || rootFlags.sourceMapInline,
			cfg.Defaults.SourceMapIncludeContent,
		))
	}

	if rootFlags.cacheDir != "" {
		store, err := cachestore.Open(rootFlags.cacheDir)
		if err != nil {
			return nil, errors.Wrap(err, "open cache store")
		}
		opts = append(opts, engine.WithCache(store))
	}

	e := engine.New(opts...)
	if cfg != nil {
		for _, name := range cfg.Plugins {
			if _, err := e.Plugins.Resolve(name); err != nil {
				return nil, errors.Wrapf(err, "load plugin %s", name)
			}
		}
	}
	return e, nil
}

// buildFunc is the signature a rules plugin's exported "Build" symbol must
// have: given the constructed Engine, it assembles and returns the file
// pipeline to run.
type buildFunc func(*engine.Engine) *filelist.FileList

// loadRules opens the compiled rules plugin at rootFlags.rulesPath and
// looks up its "Build" symbol, the dynamic-loading half of the plugin
// capability applied to the build graph itself rather than a single
// processor.
func loadRules() (buildFunc, error) {
	p, err := plugin.Open(rootFlags.rulesPath)
	if err != nil {
		return nil, errors.Wrapf(err, "open rules plugin %s", rootFlags.rulesPath)
	}
	sym, err := p.Lookup("Build")
	if err != nil {
		return nil, errors.Wrapf(err, "lookup Build symbol in %s", rootFlags.rulesPath)
	}
	build, ok := sym.(func(*engine.Engine) *filelist.FileList)
	if !ok {
		return nil, errors.Errorf("%s: Build has the wrong signature", rootFlags.rulesPath)
	}
	return build, nil
}

// exitCodeForFiles returns 1 if any file in files accumulated an error
// during the pipeline run, matching the documented "nonzero on any
// ErrorCount > 0" contract.
func exitCodeForFiles(files []*vfile.File) int {
	for _, f := range files {
		if f.ErrorCount() > 0 {
			return 1
		}
	}
	return 0
}

// runToCompletion blocks until list ends, persisting the cache store (if
// any) and converting a nonzero per-file error count into a process error
// so mainify exits nonzero, per the documented CLI exit-code contract.
func runToCompletion(e *engine.Engine, list *filelist.FileList) error {
	done := make(chan []*vfile.File, 1)
	list.OnEnd(func(files []*vfile.File) { done <- files })
	files := <-done

	if e.Cache != nil {
		if err := e.Cache.Flush(); err != nil {
			return errors.Wrap(err, "flush cache store")
		}
		if err := e.Deps.Persist(); err != nil {
			return errors.Wrap(err, "persist dependency graph")
		}
	}

	if exitCodeForFiles(files) != 0 {
		return errors.Errorf("build finished with errors in %d file(s)", countErrors(files))
	}
	return nil
}

func countErrors(files []*vfile.File) int {
	var n int
	for _, f := range files {
		if f.ErrorCount() > 0 {
			n++
		}
	}
	return n
}
