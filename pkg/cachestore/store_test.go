package cachestore

import (
	"path/filepath"
	"testing"
)

func TestRecordOutputDeduplicates(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s.RecordOutput("/a.ts", "/out/a.js")
	s.RecordOutput("/a.ts", "/out/a.js")
	s.RecordOutput("/a.ts", "/out/a.js.map")

	outputs := s.Outputs("/a.ts")
	if len(outputs) != 2 {
		t.Fatalf("Outputs = %v, want 2 entries", outputs)
	}
}

func TestFlushAndReopenRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	s.RecordOutput("/a.ts", "/out/a.js")
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	outputs := reopened.Outputs("/a.ts")
	if len(outputs) != 1 || outputs[0] != "/out/a.js" {
		t.Fatalf("Outputs after reopen = %v", outputs)
	}
}

func TestDepGraphRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	deps := map[string][]string{"/a.out": {"/b.in"}}
	refs := map[string][]string{"/c.out": {"/d.in"}}
	if err := s.SaveDepGraph(deps, refs); err != nil {
		t.Fatal(err)
	}

	gotDeps, gotRefs, err := s.LoadDepGraph()
	if err != nil {
		t.Fatal(err)
	}
	if len(gotDeps["/a.out"]) != 1 || gotDeps["/a.out"][0] != "/b.in" {
		t.Fatalf("deps = %v", gotDeps)
	}
	if len(gotRefs["/c.out"]) != 1 || gotRefs["/c.out"][0] != "/d.in" {
		t.Fatalf("refs = %v", gotRefs)
	}
}

func TestForgetOutputsRemovesEntry(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s.RecordOutput("/a.ts", "/out/a.js")
	s.ForgetOutputs("/a.ts")
	if len(s.Outputs("/a.ts")) != 0 {
		t.Fatal("expected outputs to be forgotten")
	}
}
