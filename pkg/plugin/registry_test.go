package plugin

import (
	"testing"

	"github.com/flowforge/flowforge/pkg/filelist"
	"github.com/flowforge/flowforge/pkg/vfile"
)

func TestResolveFindsRegisteredBuiltin(t *testing.T) {
	r := New("")
	r.Register("uppercase", filelist.SyncFunc(func(f *vfile.File) error { return nil }))

	processor, err := r.Resolve("uppercase")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := processor.(filelist.SyncFunc); !ok {
		t.Fatalf("Resolve returned %T, want filelist.SyncFunc", processor)
	}
}

func TestResolveRejectsUnknownBareName(t *testing.T) {
	r := New(t.TempDir())
	if _, err := r.Resolve("does-not-exist"); err == nil {
		t.Fatal("expected an error for a name with no built-in and no vendor .so")
	}
}

func TestResolvePathRecognizesExplicitSOSuffixAndSeparators(t *testing.T) {
	r := New("")
	if got := r.resolvePath("./plugins/custom.so"); got != "./plugins/custom.so" {
		t.Fatalf("resolvePath(path-like) = %q", got)
	}
	if got := r.resolvePath("custom.so"); got != "custom.so" {
		t.Fatalf("resolvePath(.so suffix) = %q", got)
	}
}
