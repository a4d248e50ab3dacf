// Package filelist implements the engine's streaming pipeline container: an
// ordered, mutable sequence of files that is both a producer (Add/End) and
// a replaying event source (OnData/OnEnd) for downstream pipeline stages.
package filelist

import (
	"sync"

	"github.com/flowforge/flowforge/pkg/vfile"
)

// FileList is an ordered, append-only (until End) sequence of files with
// replaying data/end subscriptions: a late subscriber sees buffered state
// immediately rather than missing events that fired before it registered.
type FileList struct {
	mu        sync.Mutex
	files     []*vfile.File
	ended     bool
	dataSubs  []func(*vfile.File)
	endSubs   []func([]*vfile.File)
}

// New returns an empty, unended FileList.
func New() *FileList {
	return &FileList{}
}

// Add appends file to the list and notifies data subscribers. Add after End
// is a no-op, since a terminated list is immutable.
func (l *FileList) Add(file *vfile.File) {
	l.mu.Lock()
	if l.ended {
		l.mu.Unlock()
		return
	}
	l.files = append(l.files, file)
	subs := append([]func(*vfile.File){}, l.dataSubs...)
	l.mu.Unlock()

	for _, sub := range subs {
		sub(file)
	}
}

// End marks the list terminated and notifies end subscribers with the full
// file set. End is idempotent; only the first call has effect.
func (l *FileList) End() {
	l.mu.Lock()
	if l.ended {
		l.mu.Unlock()
		return
	}
	l.ended = true
	files := append([]*vfile.File{}, l.files...)
	subs := append([]func([]*vfile.File){}, l.endSubs...)
	l.mu.Unlock()

	for _, sub := range subs {
		sub(files)
	}
}

// OnData subscribes fn to every file added to the list, replaying every file
// already buffered before fn registered.
func (l *FileList) OnData(fn func(*vfile.File)) {
	l.mu.Lock()
	buffered := append([]*vfile.File{}, l.files...)
	l.dataSubs = append(l.dataSubs, fn)
	l.mu.Unlock()

	for _, file := range buffered {
		fn(file)
	}
}

// OnEnd subscribes fn to the list's termination, invoking it immediately
// with the final file set if the list has already ended.
func (l *FileList) OnEnd(fn func([]*vfile.File)) {
	l.mu.Lock()
	if l.ended {
		files := append([]*vfile.File{}, l.files...)
		l.mu.Unlock()
		fn(files)
		return
	}
	l.endSubs = append(l.endSubs, fn)
	l.mu.Unlock()
}

// Ended reports whether End has been called.
func (l *FileList) Ended() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ended
}

// Files returns a snapshot of the files currently buffered.
func (l *FileList) Files() []*vfile.File {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*vfile.File{}, l.files...)
}

// Get returns the first buffered file whose current Path equals path.
func (l *FileList) Get(path string) (*vfile.File, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range l.files {
		if f.Path() == path {
			return f, true
		}
	}
	return nil, false
}
