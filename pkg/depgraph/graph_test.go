package depgraph

import "testing"

func TestAddDepIsIdempotent(t *testing.T) {
	g := New(nil)
	g.AddDep("/a.out", "/b.in", nil)
	g.AddDep("/a.out", "/b.in", nil)
	if len(g.deps["/a.out"]) != 1 {
		t.Fatalf("expected one deduplicated edge, got %d", len(g.deps["/a.out"]))
	}
}

func TestOnEventReportsRebuildForDep(t *testing.T) {
	g := New(nil)
	g.AddDep("/a.out", "/shared.css", nil)
	g.AddRef("/b.out", "/shared.json", nil)

	rebuild, refresh := g.OnEvent("/shared.css")
	if len(rebuild) != 1 || rebuild[0] != "/a.out" {
		t.Fatalf("rebuild = %v, want [/a.out]", rebuild)
	}
	if len(refresh) != 0 {
		t.Fatalf("refresh = %v, want none", refresh)
	}
}

func TestOnEventReportsRefreshForRef(t *testing.T) {
	g := New(nil)
	g.AddRef("/b.out", "/shared.json", nil)

	rebuild, refresh := g.OnEvent("/shared.json")
	if len(rebuild) != 0 {
		t.Fatalf("rebuild = %v, want none", rebuild)
	}
	if len(refresh) != 1 || refresh[0] != "/b.out" {
		t.Fatalf("refresh = %v, want [/b.out]", refresh)
	}
}

func TestOnEventPrefersRebuildWhenBothEdgesExist(t *testing.T) {
	g := New(nil)
	g.AddDep("/a.out", "/x", nil)
	g.AddRef("/a.out", "/x", nil)

	rebuild, refresh := g.OnEvent("/x")
	if len(rebuild) != 1 || rebuild[0] != "/a.out" {
		t.Fatalf("rebuild = %v, want [/a.out]", rebuild)
	}
	if len(refresh) != 0 {
		t.Fatalf("refresh = %v, want none when the same source also has a dep edge", refresh)
	}
}

func TestForgetDropsEdges(t *testing.T) {
	g := New(nil)
	g.AddDep("/a.out", "/x", nil)
	g.Forget("/a.out")

	rebuild, _ := g.OnEvent("/x")
	if len(rebuild) != 0 {
		t.Fatalf("expected no edges after Forget, got %v", rebuild)
	}
}

type fakeStore struct {
	deps, refs map[string][]string
}

func (f *fakeStore) LoadDepGraph() (map[string][]string, map[string][]string, error) {
	return f.deps, f.refs, nil
}

func (f *fakeStore) SaveDepGraph(deps, refs map[string][]string) error {
	f.deps, f.refs = deps, refs
	return nil
}

func TestPersistRoundTripsThroughStore(t *testing.T) {
	store := &fakeStore{}
	g := New(store)
	g.AddDep("/a.out", "/x", nil)
	if err := g.Persist(); err != nil {
		t.Fatal(err)
	}

	reloaded := New(store)
	rebuild, _ := reloaded.OnEvent("/x")
	if len(rebuild) != 1 || rebuild[0] != "/a.out" {
		t.Fatalf("rebuild after reload = %v, want [/a.out]", rebuild)
	}
}
