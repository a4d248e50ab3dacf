package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatchesExistingDirectoryAndReportsChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Terminate()

	target := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case batch := <-w.Events():
		found := false
		for _, p := range batch {
			if p == target {
				found = true
			}
		}
		if !found {
			t.Fatalf("batch %v did not include %s", batch, target)
		}
	case err := <-w.Errors():
		t.Fatalf("unexpected watch error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a coalesced event batch")
	}
}

func TestTerminateReportsErrWatchTerminated(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	w.Terminate()

	select {
	case err := <-w.Errors():
		if err != ErrWatchTerminated {
			t.Fatalf("err = %v, want ErrWatchTerminated", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for termination error")
	}
}
