package main

import (
	"testing"

	"github.com/flowforge/flowforge/pkg/vfile"
)

func TestExitCodeForFilesReflectsErrorCount(t *testing.T) {
	clean := vfile.New(vfile.Options{Path: "a.txt", Data: "x"}, vfile.Defaults{})
	failing := vfile.New(vfile.Options{Path: "b.txt", Data: "x"}, vfile.Defaults{})
	failing.Error("boom")

	if got := exitCodeForFiles([]*vfile.File{clean}); got != 0 {
		t.Fatalf("exitCodeForFiles(no errors) = %d, want 0", got)
	}
	if got := exitCodeForFiles([]*vfile.File{clean, failing}); got != 1 {
		t.Fatalf("exitCodeForFiles(one failing) = %d, want 1", got)
	}
	if got := countErrors([]*vfile.File{clean, failing, failing}); got != 2 {
		t.Fatalf("countErrors = %d, want 2", got)
	}
}
