package iocap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "a.txt")
	cap := New(nil)

	var writeErr error
	cap.WriteFile(path, []byte("hello"), true, func(err error) { writeErr = err })
	if writeErr != nil {
		t.Fatalf("WriteFile returned error: %v", writeErr)
	}

	var data []byte
	var readErr error
	cap.ReadFile(path, func(d []byte, err error) { data, readErr = d, err })
	if readErr != nil {
		t.Fatalf("ReadFile returned error: %v", readErr)
	}
	if string(data) != "hello" {
		t.Fatalf("read %q, want %q", data, "hello")
	}
}

func TestWriteFileRefusesOverwriteWithoutFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	cap := New(nil)
	var writeErr error
	cap.WriteFile(path, []byte("new"), false, func(err error) { writeErr = err })
	if writeErr != ErrExist {
		t.Fatalf("WriteFile error = %v, want ErrExist", writeErr)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "old" {
		t.Fatal("file contents were overwritten despite overwrite=false")
	}
}

func TestDeleteParentDirIfEmptyPrunesUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(nested, "x.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}

	if err := DeleteParentDirIfEmpty(file, root); err != nil {
		t.Fatalf("DeleteParentDirIfEmpty returned error: %v", err)
	}
	if Exists(filepath.Join(root, "a")) {
		t.Fatal("expected empty parent directories to be pruned")
	}
	if !Exists(root) {
		t.Fatal("did not expect the stop directory itself to be removed")
	}
}

func TestPoolRunsSubmittedWork(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	done := make(chan struct{})
	pool.Submit(func() { close(done) })
	<-done
}
