package pathutil

import "testing"

func TestResolveAbsoluteAndRelative(t *testing.T) {
	if got := Resolve("/work", "a/b.js"); got != "/work/a/b.js" {
		t.Fatalf("Resolve relative = %q", got)
	}
	if got := Resolve("/work", "/other/c.js"); got != "/other/c.js" {
		t.Fatalf("Resolve absolute = %q", got)
	}
}

func TestChangeExt(t *testing.T) {
	if got := ChangeExt("src/a.ts", ".js"); got != "src/a.js" {
		t.Fatalf("ChangeExt = %q, want src/a.js", got)
	}
}

func TestInDir(t *testing.T) {
	if !InDir("/work/src", "/work/src/a.js") {
		t.Fatal("expected /work/src/a.js to be InDir /work/src")
	}
	if InDir("/work/src", "/work/other/a.js") {
		t.Fatal("did not expect /work/other/a.js to be InDir /work/src")
	}
}

func TestDataURI(t *testing.T) {
	got := DataURI("application/json", []byte(`{"a":1}`))
	want := "data:application/json;base64,eyJhIjoxfQ=="
	if got != want {
		t.Fatalf("DataURI = %q, want %q", got, want)
	}
}

func TestResolveURLPreservesQueryAndFragment(t *testing.T) {
	got, err := ResolveURL("https://example.com/a/b.js", "c.js?x=1#frag")
	if err != nil {
		t.Fatalf("ResolveURL returned error: %v", err)
	}
	want := "https://example.com/a/c.js?x=1#frag"
	if got != want {
		t.Fatalf("ResolveURL = %q, want %q", got, want)
	}
}
