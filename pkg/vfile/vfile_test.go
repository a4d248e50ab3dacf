package vfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flowforge/flowforge/pkg/iocap"
	"github.com/flowforge/flowforge/pkg/sourcemap"
)

func TestGeneratedFileHasNoSrcPath(t *testing.T) {
	f := New(Options{Path: "out.txt", Data: "hi"}, Defaults{})
	if !f.Generated() {
		t.Fatal("expected a file with no SrcPath to be generated")
	}
	if !f.Modified() {
		t.Fatal("expected a file constructed with Data to be modified")
	}
}

func TestContentLazyLoadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := New(Options{SrcPath: src}, Defaults{WorkingDir: dir, IO: iocap.New(nil)})

	content, err := f.Content()
	if err != nil {
		t.Fatal(err)
	}
	if content != "hello" {
		t.Fatalf("Content() = %q, want %q", content, "hello")
	}
	if f.Modified() {
		t.Fatal("reading unmodified content should not mark the file modified")
	}
}

func TestSetContentMarksModifiedAndClearsBuffer(t *testing.T) {
	f := New(Options{Path: "a.txt"}, Defaults{})
	f.SetBuffer([]byte("one"))
	f.SetContent("two")

	content, err := f.Content()
	if err != nil {
		t.Fatal(err)
	}
	if content != "two" {
		t.Fatalf("Content() = %q, want %q", content, "two")
	}
	buf, err := f.Buffer()
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "two" {
		t.Fatalf("Buffer() = %q, want %q", buf, "two")
	}
}

func TestSaveWritesDestPath(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.txt")
	f := New(Options{Path: dest, Data: "payload"}, Defaults{IO: iocap.New(nil), Overwrite: true})

	var saveErr error
	f.Save(func(err error) { saveErr = err })
	if saveErr != nil {
		t.Fatal(saveErr)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Fatalf("wrote %q, want %q", data, "payload")
	}
}

func TestSaveRefusesOverwriteWithoutFlag(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := New(Options{Path: dest, Data: "new"}, Defaults{IO: iocap.New(nil), Overwrite: false})

	var saveErr error
	f.Save(func(err error) { saveErr = err })
	if saveErr != iocap.ErrExist {
		t.Fatalf("Save error = %v, want ErrExist", saveErr)
	}
	if f.ErrorCount() != 1 {
		t.Fatalf("expected the overwrite conflict to be attached as a diagnostic, got %d errors", f.ErrorCount())
	}
}

func TestCleanModeDeletesInsteadOfWriting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "built.txt")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := New(Options{SrcPath: src}, Defaults{Mode: ModeClean, IO: iocap.New(nil), WorkingDir: dir})

	var saveErr error
	f.Save(func(err error) { saveErr = err })
	if saveErr != nil {
		t.Fatal(saveErr)
	}
	if iocap.Exists(src) {
		t.Fatal("expected ModeClean Save to delete the source file")
	}
}

func TestApplySourceMapComposesThroughExisting(t *testing.T) {
	first := sourcemap.NewBuilder()
	first.AddMapping(0, 0, "orig.txt", 0, 0, "")
	f := New(Options{Path: "mid.txt"}, Defaults{})
	f.SetSourceMap(sourcemap.FromBuilder(first))

	second := sourcemap.NewBuilder()
	second.AddMapping(0, 0, "mid.txt", 0, 0, "")
	f.ApplySourceMap(sourcemap.FromBuilder(second))

	merged, ok := f.currentSourceMapBuilder()
	if !ok {
		t.Fatal("expected a source map to be attached after ApplySourceMap")
	}
	origin, ok := merged.GetSource(sourcemap.Position{Line: 0, Column: 0})
	if !ok {
		t.Fatal("expected a resolvable origin")
	}
	if origin.SourcePath != "orig.txt" {
		t.Fatalf("composed origin = %q, want %q", origin.SourcePath, "orig.txt")
	}
}

func TestErrorRewritesThroughSourceMap(t *testing.T) {
	b := sourcemap.NewBuilder()
	b.AddMapping(4, 2, "orig.txt", 9, 1, "thing")
	f := New(Options{Path: "gen.txt"}, Defaults{})
	f.SetSourceMap(sourcemap.FromBuilder(b))

	entry := f.Error("boom", Position{Line: 5, Column: 2})
	if entry.Path != "orig.txt" {
		t.Fatalf("entry.Path = %q, want %q", entry.Path, "orig.txt")
	}
	if entry.StartLine != 10 || entry.StartColumn != 1 {
		t.Fatalf("entry start = %d:%d, want 10:1", entry.StartLine, entry.StartColumn)
	}
}

func TestLocationToIndexRoundTrip(t *testing.T) {
	f := New(Options{Path: "a.txt", Data: "ab\ncd\nef"}, Defaults{})
	idx, err := f.LocationToIndex(Position{Line: 2, Column: 1})
	if err != nil {
		t.Fatal(err)
	}
	if idx != 4 {
		t.Fatalf("LocationToIndex = %d, want 4", idx)
	}
	loc, err := f.IndexToLocation(4)
	if err != nil {
		t.Fatal(err)
	}
	if loc.Line != 2 || loc.Column != 1 {
		t.Fatalf("IndexToLocation = %+v, want {2 1}", loc)
	}
}

type recordingDeps struct {
	deps, refs [][2]string
}

func (r *recordingDeps) AddDep(src, target string, log *LogEntry) { r.deps = append(r.deps, [2]string{src, target}) }
func (r *recordingDeps) AddRef(src, target string, log *LogEntry) { r.refs = append(r.refs, [2]string{src, target}) }

func TestDepAndRefDelegateToRecorder(t *testing.T) {
	rec := &recordingDeps{}
	f := New(Options{SrcPath: "/a/in.txt"}, Defaults{Deps: rec})
	f.Dep("/a/included.txt", nil)
	f.Ref("/a/referenced.txt", nil)

	if len(rec.deps) != 1 || rec.deps[0][1] != "/a/included.txt" {
		t.Fatalf("deps = %v", rec.deps)
	}
	if len(rec.refs) != 1 || rec.refs[0][1] != "/a/referenced.txt" {
		t.Fatalf("refs = %v", rec.refs)
	}
}

func TestCloneCopiesCurrentData(t *testing.T) {
	f := New(Options{Path: "a.txt", Data: "hi"}, Defaults{})
	clone := f.Clone()
	content, err := clone.Content()
	if err != nil {
		t.Fatal(err)
	}
	if content != "hi" {
		t.Fatalf("clone content = %q, want %q", content, "hi")
	}

	clone.SetContent("bye")
	original, _ := f.Content()
	if original != "hi" {
		t.Fatal("mutating the clone's content must not affect the original")
	}
}
