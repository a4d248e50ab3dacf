package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSrcGlobsMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.js"), "a")
	mustWrite(t, filepath.Join(dir, "b.css"), "b")

	e := New(WithWorkingDir(dir))
	list := e.Src("*.js")

	if !list.Ended() {
		t.Fatal("Src should return an already-ended FileList")
	}
	files := list.Files()
	if len(files) != 1 {
		t.Fatalf("Src matched %d files, want 1", len(files))
	}
}

func TestCleanWithNoCacheIsANoOp(t *testing.T) {
	e := New()
	called := false
	e.Clean(func(err error) {
		called = true
		if err != nil {
			t.Fatal(err)
		}
	})
	if !called {
		t.Fatal("Clean callback never invoked")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
