package logging

import "testing"

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Debugf("should not panic")
	l.Warn(nil)
	l.Error(nil)
	if id := l.Begin("ignored"); id != 0 {
		t.Fatalf("Begin on nil logger returned %d, want 0", id)
	}
	l.End(0)
}

func TestDiscardLoggerEmitsNothingButStaysUsable(t *testing.T) {
	l := Discard()
	if l.enabled(LevelError) {
		t.Fatal("Discard logger reported LevelError enabled")
	}
	l.Errorf("swallowed")
}

func TestSubloggerInheritsLevel(t *testing.T) {
	root := New(LevelDebug)
	sub := root.Sublogger("stage")
	if !sub.enabled(LevelDebug) {
		t.Fatal("sublogger should inherit parent's level")
	}
	if sub.prefix != "stage" {
		t.Fatalf("sublogger prefix = %q, want %q", sub.prefix, "stage")
	}
}

func TestBeginEndTracksSpans(t *testing.T) {
	l := New(LevelInfo)
	id := l.Begin("building {name}", "name", "a.js")
	if id == 0 {
		t.Fatal("Begin returned zero ProgressID")
	}
	if _, ok := l.spans.Load(id); !ok {
		t.Fatal("span not recorded after Begin")
	}
	l.End(id)
	if _, ok := l.spans.Load(id); ok {
		t.Fatal("span still recorded after End")
	}
}

func TestWriterSplitsLines(t *testing.T) {
	l := New(LevelInfo)
	w := l.Writer()
	if _, err := w.Write([]byte("line one\nline two\r\n")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
}
