package vfile

import "sort"

// buildIndexes computes the byte offset each line starts at, so
// LocationToIndex/IndexToLocation can binary-search instead of rescanning
// content on every call.
func buildIndexes(content string) []int {
	indexes := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			indexes = append(indexes, i+1)
		}
	}
	return indexes
}

func (f *File) clearIndexes() {
	f.mu.Lock()
	f.indexes = nil
	f.mu.Unlock()
}

func (f *File) ensureIndexes() ([]int, error) {
	f.mu.Lock()
	if f.indexes != nil {
		idx := f.indexes
		f.mu.Unlock()
		return idx, nil
	}
	f.mu.Unlock()

	content, err := f.Content()
	if err != nil {
		return nil, err
	}
	idx := buildIndexes(content)
	f.mu.Lock()
	f.indexes = idx
	f.mu.Unlock()
	return idx, nil
}

// LocationToIndex converts a Position (one-based line, zero-based column)
// into a zero-based byte
// offset into the file's current content.
func (f *File) LocationToIndex(loc Position) (int, error) {
	indexes, err := f.ensureIndexes()
	if err != nil {
		return 0, err
	}
	line := loc.Line - 1
	if line < 0 {
		line = 0
	}
	if line >= len(indexes) {
		line = len(indexes) - 1
	}
	return indexes[line] + loc.Column, nil
}

// IndexToLocation converts a zero-based byte offset into a Position (one-based
// line, zero-based column) against the file's current content.
func (f *File) IndexToLocation(index int) (Position, error) {
	indexes, err := f.ensureIndexes()
	if err != nil {
		return Position{}, err
	}
	line := sort.Search(len(indexes), func(i int) bool { return indexes[i] > index }) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line + 1, Column: index - indexes[line]}, nil
}
