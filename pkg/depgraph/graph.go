// Package depgraph implements the engine's dependency tracker: it records
// which build outputs depend on which inputs so that watch mode can
// decide, per changed path, whether a source needs a full rebuild or only
// a content-only refresh.
package depgraph

import (
	"sync"

	"github.com/flowforge/flowforge/pkg/vfile"
)

// edge pairs a dependency target with the diagnostic that was current when
// the edge was recorded, mirroring vfile.LogEntry's weak-reference design
// (the log entry is informational only; the graph never dereferences
// anything through it besides reading fields for persistence).
type edge struct {
	target string
	log    *vfile.LogEntry
}

// Graph tracks file→file dependency ("Dep") and reference ("Ref") edges.
// Dep edges require a full rebuild of the source when the target changes;
// Ref edges require only re-emitting the source's already-computed output.
// It satisfies vfile.DependencyRecorder structurally.
type Graph struct {
	mu   sync.Mutex
	deps map[string][]edge
	refs map[string][]edge

	store Store
}

// Store is the persistence capability a Graph delegates to (satisfied
// structurally by *cachestore.Store).
type Store interface {
	LoadDepGraph() (deps, refs map[string][]string, err error)
	SaveDepGraph(deps, refs map[string][]string) error
}

// New creates an empty Graph, optionally backed by a Store for persistence
// across process runs. A nil store disables persistence.
func New(store Store) *Graph {
	g := &Graph{
		deps:  make(map[string][]edge),
		refs:  make(map[string][]edge),
		store: store,
	}
	if store != nil {
		if deps, refs, err := store.LoadDepGraph(); err == nil {
			for src, targets := range deps {
				for _, target := range targets {
					g.deps[src] = append(g.deps[src], edge{target: target})
				}
			}
			for src, targets := range refs {
				for _, target := range targets {
					g.refs[src] = append(g.refs[src], edge{target: target})
				}
			}
		}
	}
	return g
}

// AddDep records that src's build output depends on target: any future
// change to target requires rebuilding src from scratch.
func (g *Graph) AddDep(src, target string, log *vfile.LogEntry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if hasEdge(g.deps[src], target) {
		return
	}
	g.deps[src] = append(g.deps[src], edge{target: target, log: log})
}

// AddRef records that src's build output references target's content: a
// future change to target requires only refreshing src's already-built
// output, not rerunning its pipeline.
func (g *Graph) AddRef(src, target string, log *vfile.LogEntry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if hasEdge(g.refs[src], target) {
		return
	}
	g.refs[src] = append(g.refs[src], edge{target: target, log: log})
}

func hasEdge(edges []edge, target string) bool {
	for _, e := range edges {
		if e.target == target {
			return true
		}
	}
	return false
}

// Forget drops every edge recorded for src, called before a source is
// reprocessed so stale dependency edges don't linger.
func (g *Graph) Forget(src string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.deps, src)
	delete(g.refs, src)
}

// OnEvent reports which sources need a full rebuild and which need only a
// content refresh in response to a changed path.
// A source appearing in both sets (reachable via both a Dep and a Ref edge)
// is reported only as a rebuild, since rebuilding subsumes refreshing.
func (g *Graph) OnEvent(path string) (rebuild, refresh []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rebuildSet := make(map[string]bool)
	for src, edges := range g.deps {
		if hasEdge(edges, path) {
			rebuildSet[src] = true
		}
	}
	for src, edges := range g.refs {
		if rebuildSet[src] || !hasEdge(edges, path) {
			continue
		}
		refresh = append(refresh, src)
	}
	for src := range rebuildSet {
		rebuild = append(rebuild, src)
	}
	return rebuild, refresh
}

// Persist writes the current edge set through the backing Store, if any.
func (g *Graph) Persist() error {
	if g.store == nil {
		return nil
	}
	g.mu.Lock()
	deps := flatten(g.deps)
	refs := flatten(g.refs)
	g.mu.Unlock()
	return g.store.SaveDepGraph(deps, refs)
}

func flatten(m map[string][]edge) map[string][]string {
	out := make(map[string][]string, len(m))
	for src, edges := range m {
		targets := make([]string, len(edges))
		for i, e := range edges {
			targets[i] = e.target
		}
		out[src] = targets
	}
	return out
}
