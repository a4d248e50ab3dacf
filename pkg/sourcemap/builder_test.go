package sourcemap

import (
	"reflect"
	"testing"
)

func TestToObjectParseRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.AddMapping(0, 0, "a.js", 0, 0, "")
	b.AddMapping(0, 4, "a.js", 0, 4, "x")
	b.AddMapping(1, 0, "a.js", 2, 0, "")

	obj := b.ToObject()
	reparsed, err := Parse(obj)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	reobj := reparsed.ToObject()

	if !reflect.DeepEqual(obj, reobj) {
		t.Fatalf("round-trip mismatch:\nfirst:  %+v\nsecond: %+v", obj, reobj)
	}
}

func TestGetSourceExactMatch(t *testing.T) {
	b := NewBuilder()
	b.AddMapping(0, 0, "a.js", 5, 2, "foo")

	origin, ok := b.GetSource(Position{Line: 0, Column: 0})
	if !ok {
		t.Fatal("expected a mapping at (0,0)")
	}
	if origin.SourcePath != "a.js" || origin.Position != (Position{Line: 5, Column: 2}) {
		t.Fatalf("unexpected origin: %+v", origin)
	}
	if !origin.HasName || origin.Name != "foo" {
		t.Fatalf("expected name foo, got %+v", origin)
	}
}

func TestGetSourceFallsBackToPrecedingSegment(t *testing.T) {
	b := NewBuilder()
	b.AddMapping(0, 0, "a.js", 0, 0, "")
	b.AddMapping(0, 10, "a.js", 0, 10, "")

	origin, ok := b.GetSource(Position{Line: 0, Column: 5})
	if !ok {
		t.Fatal("expected a fallback mapping")
	}
	if origin.Position.Column != 0 {
		t.Fatalf("expected fallback to column 0 segment, got %+v", origin)
	}
}

func TestGetSourceNoSegmentOnLine(t *testing.T) {
	b := NewBuilder()
	b.AddMapping(0, 0, "a.js", 0, 0, "")

	if _, ok := b.GetSource(Position{Line: 3, Column: 0}); ok {
		t.Fatal("expected no mapping for an untouched line")
	}
}

func TestComposePreservesOriginalPosition(t *testing.T) {
	// Outer: generated -> intermediate. Inner: intermediate -> original.
	outer := NewBuilder()
	outer.AddMapping(0, 0, "intermediate.js", 0, 0, "")

	inner := NewBuilder()
	inner.AddMapping(0, 0, "original.js", 3, 1, "")

	composed := outer.Compose(inner)
	origin, ok := composed.GetSource(Position{Line: 0, Column: 0})
	if !ok {
		t.Fatal("expected composed mapping")
	}
	if origin.SourcePath != "original.js" || origin.Position != (Position{Line: 3, Column: 1}) {
		t.Fatalf("composition did not resolve through inner map: %+v", origin)
	}
}

func TestComposeLeavesUnmatchedSegmentUnchanged(t *testing.T) {
	outer := NewBuilder()
	outer.AddMapping(0, 0, "intermediate.js", 9, 9, "")

	inner := NewBuilder() // has no mapping at (9,9)

	composed := outer.Compose(inner)
	origin, ok := composed.GetSource(Position{Line: 0, Column: 0})
	if !ok {
		t.Fatal("expected mapping to survive composition")
	}
	if origin.SourcePath != "intermediate.js" || origin.Position != (Position{Line: 9, Column: 9}) {
		t.Fatalf("unmatched segment was altered: %+v", origin)
	}
}

func TestDataRoundTripsThroughJSON(t *testing.T) {
	b := NewBuilder()
	b.AddMapping(0, 0, "a.js", 0, 0, "")

	data := FromBuilder(b)
	encoded, err := data.JSON()
	if err != nil {
		t.Fatalf("JSON returned error: %v", err)
	}

	reloaded := FromJSON(encoded)
	obj, err := reloaded.Object()
	if err != nil {
		t.Fatalf("Object returned error: %v", err)
	}
	if obj.Version != 3 || len(obj.Sources) != 1 || obj.Sources[0] != "a.js" {
		t.Fatalf("unexpected object after JSON round-trip: %+v", obj)
	}
}
