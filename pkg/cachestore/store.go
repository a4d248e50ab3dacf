// Package cachestore implements the engine's on-disk cache: a small
// JSON-backed key/value persistence layer recording, per source path, the
// outputs it produced and the dependency/reference edges recorded against
// it, so that the next watch-mode run (or a later `clean`) doesn't have to
// rediscover that information from scratch.
package cachestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

const (
	outputMapFile = "output-map.json"
	depGraphFile  = "dep-graph.json"
)

type depGraphDocument struct {
	Deps map[string][]string `json:"deps"`
	Refs map[string][]string `json:"refs"`
}

// Store persists the output map and dependency graph as JSON documents
// under dir, created on first write. The CLI passes ".flowforge/cache"
// (relative to the current directory) unless --cache-dir overrides it.
type Store struct {
	mu  sync.Mutex
	dir string

	outputs map[string][]string
}

// Open loads an existing store from dir, or starts a fresh one if dir
// doesn't yet contain cache files.
func Open(dir string) (*Store, error) {
	s := &Store{dir: dir, outputs: make(map[string][]string)}

	data, err := os.ReadFile(filepath.Join(dir, outputMapFile))
	if err == nil {
		if err := json.Unmarshal(data, &s.outputs); err != nil {
			return nil, errors.Wrap(err, "parse output-map cache")
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "read output-map cache")
	}

	return s, nil
}

// RecordOutput appends destPath to the set of outputs known to have been
// produced from srcPath. Satisfies vfile.CacheRecorder structurally.
func (s *Store) RecordOutput(srcPath, destPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.outputs[srcPath] {
		if existing == destPath {
			return
		}
	}
	s.outputs[srcPath] = append(s.outputs[srcPath], destPath)
}

// Outputs returns the outputs previously recorded for srcPath.
func (s *Store) Outputs(srcPath string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.outputs[srcPath]))
	copy(out, s.outputs[srcPath])
	return out
}

// ForgetOutputs drops the recorded outputs for srcPath, used by Clean once
// the on-disk files have been removed.
func (s *Store) ForgetOutputs(srcPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.outputs, srcPath)
}

// AllSources returns every source path the store has output records for.
func (s *Store) AllSources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.outputs))
	for src := range s.outputs {
		out = append(out, src)
	}
	return out
}

// Flush persists the output map to disk.
func (s *Store) Flush() error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.outputs, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "encode output-map cache")
	}
	return writeFile(s.dir, outputMapFile, data)
}

// LoadDepGraph satisfies depgraph.Store, reading the dep-graph document if
// present.
func (s *Store) LoadDepGraph() (deps, refs map[string][]string, err error) {
	data, err := os.ReadFile(filepath.Join(s.dir, depGraphFile))
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "read dep-graph cache")
	}
	var doc depGraphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, errors.Wrap(err, "parse dep-graph cache")
	}
	return doc.Deps, doc.Refs, nil
}

// SaveDepGraph satisfies depgraph.Store.
func (s *Store) SaveDepGraph(deps, refs map[string][]string) error {
	data, err := json.MarshalIndent(depGraphDocument{Deps: deps, Refs: refs}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode dep-graph cache")
	}
	return writeFile(s.dir, depGraphFile, data)
}

func writeFile(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create cache dir %s", dir)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
