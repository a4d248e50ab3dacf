package filelist

import (
	"path/filepath"
	"sync/atomic"

	"github.com/flowforge/flowforge/pkg/vfile"
)

// Src returns a derived list containing only files whose current Path
// matches one of patterns, evaluated through vfile.File.Match.
func (l *FileList) Src(patterns ...any) *FileList {
	out := New()
	l.OnData(func(f *vfile.File) {
		ok, err := f.Match(patterns...)
		if err != nil {
			f.Error(err.Error())
			return
		}
		if ok {
			out.Add(f)
		}
	})
	l.OnEnd(func([]*vfile.File) { out.End() })
	return out
}

// Concat emits the union of lists: files already buffered in any
// input are added immediately, and the merged list ends once every input
// has ended.
func Concat(lists ...*FileList) *FileList {
	out := New()
	if len(lists) == 0 {
		out.End()
		return out
	}

	remaining := int64(len(lists))
	for _, in := range lists {
		in.OnData(out.Add)
		in.OnEnd(func([]*vfile.File) {
			remaining--
			if remaining == 0 {
				out.End()
			}
		})
	}
	return out
}

// Concat is the method form of the package-level Concat, merging l with
// others.
func (l *FileList) Concat(others ...*FileList) *FileList {
	return Concat(append([]*FileList{l}, others...)...)
}

// DestFunc computes a save directory from a file; Dest accepts either a
// fixed directory string or one of these.
type DestFunc func(f *vfile.File) string

// Dest saves every file to dir (or the directory DestFunc computes) and
// forwards it downstream once the save completes.
func (l *FileList) Dest(dir any) *FileList {
	resolve := destResolver(dir)
	out := New()
	var pending int64 = 1

	finish := func() {
		if atomic.AddInt64(&pending, -1) == 0 {
			out.End()
		}
	}

	l.OnData(func(f *vfile.File) {
		atomic.AddInt64(&pending, 1)
		target := resolve(f)
		if target != "" {
			f.SetPath(target)
		}
		f.Save(func(err error) {
			out.Add(f)
			finish()
		})
	})
	l.OnEnd(func([]*vfile.File) { finish() })
	return out
}

// Delete is symmetric to Dest but calls File.Delete, optionally pruning the
// file's now-empty parent directory when deleteDir is true.
func (l *FileList) Delete(deleteDir bool) *FileList {
	out := New()
	var pending int64 = 1

	finish := func() {
		if atomic.AddInt64(&pending, -1) == 0 {
			out.End()
		}
	}

	l.OnData(func(f *vfile.File) {
		atomic.AddInt64(&pending, 1)
		f.DeleteWithOptions(deleteDir, func(err error) {
			out.Add(f)
			finish()
		})
	})
	l.OnEnd(func([]*vfile.File) { finish() })
	return out
}

func destResolver(dir any) DestFunc {
	switch v := dir.(type) {
	case string:
		return func(f *vfile.File) string {
			return joinDestDir(v, f)
		}
	case DestFunc:
		return func(f *vfile.File) string {
			return joinDestDir(v(f), f)
		}
	case func(*vfile.File) string:
		return func(f *vfile.File) string {
			return joinDestDir(v(f), f)
		}
	default:
		return func(*vfile.File) string { return "" }
	}
}

func joinDestDir(dir string, f *vfile.File) string {
	return filepath.Join(dir, filepath.Base(f.Path()))
}
