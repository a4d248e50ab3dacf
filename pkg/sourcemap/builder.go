package sourcemap

import (
	"sort"
	"strings"
)

// segment is one mapping entry within a single generated line.
type segment struct {
	genColumn   int
	sourceIndex int
	hasSource   bool
	origLine    int
	origColumn  int
	nameIndex   int
	hasName     bool
}

// Builder is the mutable, line-indexed representation of a source map. It is
// the form processors accumulate mappings into; Object is the wire form.
type Builder struct {
	File       string
	SourceRoot string

	sources        []string
	sourceIndex    map[string]int
	sourcesContent map[string]string
	names          []string
	nameIndex      map[string]int

	// lines[i] holds the segments for generated line i, sorted by column.
	lines [][]segment
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		sourceIndex: make(map[string]int),
		nameIndex:   make(map[string]int),
	}
}

// Sources returns the deduplicated list of original source paths referenced
// by this builder, in first-use order.
func (b *Builder) Sources() []string {
	out := make([]string, len(b.sources))
	copy(out, b.sources)
	return out
}

// SetSourceContent records the original text of a source, keyed by the path
// as passed to AddMapping/AddSource.
func (b *Builder) SetSourceContent(sourcePath, content string) {
	if b.sourcesContent == nil {
		b.sourcesContent = make(map[string]string)
	}
	b.sourcesContent[sourcePath] = content
}

// SourceContent returns the recorded content for a source, if any.
func (b *Builder) SourceContent(sourcePath string) (string, bool) {
	c, ok := b.sourcesContent[sourcePath]
	return c, ok
}

func (b *Builder) addSource(path string) int {
	if idx, ok := b.sourceIndex[path]; ok {
		return idx
	}
	idx := len(b.sources)
	b.sources = append(b.sources, path)
	b.sourceIndex[path] = idx
	return idx
}

func (b *Builder) addName(name string) int {
	if idx, ok := b.nameIndex[name]; ok {
		return idx
	}
	idx := len(b.names)
	b.names = append(b.names, name)
	b.nameIndex[name] = idx
	return idx
}

func (b *Builder) ensureLine(line int) {
	for len(b.lines) <= line {
		b.lines = append(b.lines, nil)
	}
}

// AddMapping records that generated position (genLine, genColumn) originates
// from (sourcePath, origLine, origColumn), optionally naming the original
// symbol. All positions are zero-based.
func (b *Builder) AddMapping(genLine, genColumn int, sourcePath string, origLine, origColumn int, name string) {
	b.ensureLine(genLine)
	seg := segment{
		genColumn:   genColumn,
		sourceIndex: b.addSource(sourcePath),
		hasSource:   true,
		origLine:    origLine,
		origColumn:  origColumn,
	}
	if name != "" {
		seg.nameIndex = b.addName(name)
		seg.hasName = true
	}
	b.insert(genLine, seg)
}

// AddUnmappedPosition records a generated position with no corresponding
// original source (used for output the engine introduces, such as injected
// boilerplate).
func (b *Builder) AddUnmappedPosition(genLine, genColumn int) {
	b.ensureLine(genLine)
	b.insert(genLine, segment{genColumn: genColumn})
}

func (b *Builder) insert(line int, seg segment) {
	segs := b.lines[line]
	i := sort.Search(len(segs), func(i int) bool { return segs[i].genColumn >= seg.genColumn })
	if i < len(segs) && segs[i].genColumn == seg.genColumn {
		segs[i] = seg
		return
	}
	segs = append(segs, segment{})
	copy(segs[i+1:], segs[i:])
	segs[i] = seg
	b.lines[line] = segs
}

// GetSource resolves a generated Position to its Origin. If no segment
// covers the exact column, the greatest segment with genColumn <= column on
// the same line wins; if no segment exists on that line at all, the zero
// Origin is returned with ok false, so callers should check that before
// using the result.
func (b *Builder) GetSource(pos Position) (Origin, bool) {
	if pos.Line < 0 || pos.Line >= len(b.lines) {
		return Origin{}, false
	}
	segs := b.lines[pos.Line]
	if len(segs) == 0 {
		return Origin{}, false
	}

	i := sort.Search(len(segs), func(i int) bool { return segs[i].genColumn > pos.Column }) - 1
	if i < 0 {
		return Origin{}, false
	}
	seg := segs[i]
	if !seg.hasSource {
		return Origin{}, false
	}

	origin := Origin{
		SourcePath: b.sources[seg.sourceIndex],
		Position:   Position{Line: seg.origLine, Column: seg.origColumn},
	}
	if content, ok := b.sourcesContent[origin.SourcePath]; ok {
		origin.SourceContent = content
		origin.HasContent = true
	}
	if seg.hasName {
		origin.Name = b.names[seg.nameIndex]
		origin.HasName = true
	}
	return origin, true
}

// Compose composes this builder with inner: for every generated segment in
// this builder, its original position is looked up in inner; if inner has a
// mapping there, this segment's origin is replaced with inner's; otherwise
// it is left unchanged. After composing, this builder's mappings point
// through inner to inner's originals.
func (b *Builder) Compose(inner *Builder) *Builder {
	result := NewBuilder()
	result.File = b.File
	result.SourceRoot = b.SourceRoot

	for genLine, segs := range b.lines {
		for _, seg := range segs {
			if !seg.hasSource {
				result.AddUnmappedPosition(genLine, seg.genColumn)
				continue
			}

			name := ""
			if seg.hasName {
				name = b.names[seg.nameIndex]
			}

			origin, ok := inner.GetSource(Position{Line: seg.origLine, Column: seg.origColumn})
			if !ok {
				result.AddMapping(genLine, seg.genColumn, b.sources[seg.sourceIndex], seg.origLine, seg.origColumn, name)
				continue
			}
			if origin.HasName {
				name = origin.Name
			}
			result.AddMapping(genLine, seg.genColumn, origin.SourcePath, origin.Position.Line, origin.Position.Column, name)
			if origin.HasContent {
				result.SetSourceContent(origin.SourcePath, origin.SourceContent)
			}
		}
	}

	for path, content := range b.sourcesContent {
		if _, ok := result.sourcesContent[path]; !ok {
			result.SetSourceContent(path, content)
		}
	}

	return result
}

// ToObject serializes the builder to a Source Map V3 Object, computing the
// VLQ-encoded mappings string.
func (b *Builder) ToObject() *Object {
	obj := &Object{
		Version:    3,
		File:       b.File,
		SourceRoot: b.SourceRoot,
		Sources:    b.Sources(),
		Names:      append([]string(nil), b.names...),
	}

	if len(b.sourcesContent) > 0 {
		obj.SourcesContent = make([]string, len(obj.Sources))
		for i, src := range obj.Sources {
			obj.SourcesContent[i] = b.sourcesContent[src]
		}
	}

	var out strings.Builder
	prevGenCol, prevSourceIdx, prevOrigLine, prevOrigCol, prevNameIdx := 0, 0, 0, 0, 0
	for line, segs := range b.lines {
		if line > 0 {
			out.WriteByte(';')
		}
		prevGenCol = 0
		for i, seg := range segs {
			if i > 0 {
				out.WriteByte(',')
			}
			buf := make([]byte, 0, 20)
			buf = encodeVLQ(buf, seg.genColumn-prevGenCol)
			prevGenCol = seg.genColumn
			if seg.hasSource {
				buf = encodeVLQ(buf, seg.sourceIndex-prevSourceIdx)
				buf = encodeVLQ(buf, seg.origLine-prevOrigLine)
				buf = encodeVLQ(buf, seg.origColumn-prevOrigCol)
				prevSourceIdx, prevOrigLine, prevOrigCol = seg.sourceIndex, seg.origLine, seg.origColumn
				if seg.hasName {
					buf = encodeVLQ(buf, seg.nameIndex-prevNameIdx)
					prevNameIdx = seg.nameIndex
				}
			}
			out.Write(buf)
		}
	}
	obj.Mappings = out.String()

	return obj
}

// Parse builds a Builder from a raw Object, decoding its VLQ mappings.
func Parse(obj *Object) (*Builder, error) {
	b := NewBuilder()
	b.File = obj.File
	b.SourceRoot = obj.SourceRoot
	for _, src := range obj.Sources {
		b.addSource(src)
	}
	for i, content := range obj.SourcesContent {
		if i < len(obj.Sources) && content != "" {
			b.SetSourceContent(obj.Sources[i], content)
		}
	}
	for _, name := range obj.Names {
		b.addName(name)
	}

	lines := strings.Split(obj.Mappings, ";")
	prevSourceIdx, prevOrigLine, prevOrigCol, prevNameIdx := 0, 0, 0, 0
	for lineNum, line := range lines {
		if line == "" {
			continue
		}
		prevGenCol := 0
		for _, group := range strings.Split(line, ",") {
			if group == "" {
				continue
			}
			rest := group
			genColDelta, n, err := decodeVLQ(rest)
			if err != nil {
				return nil, err
			}
			prevGenCol += genColDelta
			rest = rest[n:]

			seg := segment{genColumn: prevGenCol}
			if rest != "" {
				d, n, err := decodeVLQ(rest)
				if err != nil {
					return nil, err
				}
				prevSourceIdx += d
				rest = rest[n:]

				d, n, err = decodeVLQ(rest)
				if err != nil {
					return nil, err
				}
				prevOrigLine += d
				rest = rest[n:]

				d, n, err = decodeVLQ(rest)
				if err != nil {
					return nil, err
				}
				prevOrigCol += d
				rest = rest[n:]

				seg.hasSource = true
				seg.sourceIndex = prevSourceIdx
				seg.origLine = prevOrigLine
				seg.origColumn = prevOrigCol

				if rest != "" {
					d, _, err := decodeVLQ(rest)
					if err != nil {
						return nil, err
					}
					prevNameIdx += d
					seg.hasName = true
					seg.nameIndex = prevNameIdx
				}
			}
			b.ensureLine(lineNum)
			b.lines[lineNum] = append(b.lines[lineNum], seg)
		}
	}

	return b, nil
}
