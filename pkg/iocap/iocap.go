// Package iocap implements the engine's filesystem capability: async-
// signature read/write/copy/delete wrappers around os/io, plus sync
// equivalents for lazy loaders, dispatched onto a bounded Pool so that
// "asynchronous" means "handed to a pool goroutine, result delivered by
// callback".
package iocap

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrExist is returned when a write would overwrite an existing file and the
// overwrite guard forbids it.
var ErrExist = os.ErrExist

// Capability bundles a worker Pool with the filesystem operations the
// engine's core needs. A nil *Capability is valid and runs everything
// synchronously on the calling goroutine, which is convenient for tests.
type Capability struct {
	pool *Pool
}

// New creates a Capability backed by the given Pool. A nil pool is allowed
// and causes all operations to run synchronously.
func New(pool *Pool) *Capability {
	return &Capability{pool: pool}
}

func (c *Capability) dispatch(fn func()) {
	if c == nil || c.pool == nil {
		fn()
		return
	}
	c.pool.Submit(fn)
}

// ReadFile reads path's full contents and delivers them to cb.
func (c *Capability) ReadFile(path string, cb func([]byte, error)) {
	c.dispatch(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			err = errors.Wrapf(err, "read %s", path)
		}
		cb(data, err)
	})
}

// ReadFileSync is the synchronous equivalent of ReadFile, used by lazy
// content loaders that need the result inline.
func ReadFileSync(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return data, nil
}

// WriteFile writes data to path, creating parent directories as needed, and
// delivers the result to cb. If overwrite is false and path already exists,
// cb receives ErrExist and nothing is written.
func (c *Capability) WriteFile(path string, data []byte, overwrite bool, cb func(error)) {
	c.dispatch(func() {
		cb(writeFile(path, data, overwrite))
	})
}

func writeFile(path string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return ErrExist
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, "stat %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "mkdir for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// CopyFile copies src to dst, creating parent directories as needed.
func (c *Capability) CopyFile(src, dst string, cb func(error)) {
	c.dispatch(func() {
		cb(copyFile(src, dst))
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrapf(err, "mkdir for %s", dst)
	}
	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "create %s", dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, "copy %s to %s", src, dst)
	}
	return out.Close()
}

// DeleteFile removes path, ignoring a not-exist error.
func (c *Capability) DeleteFile(path string, cb func(error)) {
	c.dispatch(func() {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			err = errors.Wrapf(err, "remove %s", path)
		} else {
			err = nil
		}
		cb(err)
	})
}

// DeleteParentDirIfEmpty removes path's parent directory if doing so would
// not remove anything but an empty directory, and recurses upward while
// parents keep turning up empty, stopping at stopAt (the build/source root).
func DeleteParentDirIfEmpty(path, stopAt string) error {
	dir := filepath.Dir(path)
	for {
		if dir == stopAt || dir == "." || dir == string(filepath.Separator) {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return errors.Wrapf(err, "read dir %s", dir)
		}
		if len(entries) > 0 {
			return nil
		}
		if err := os.Remove(dir); err != nil {
			return errors.Wrapf(err, "remove empty dir %s", dir)
		}
		dir = filepath.Dir(dir)
	}
}

// Stat returns file info for path, or (nil, false) if it does not exist.
func Stat(path string) (fs.FileInfo, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "stat %s", path)
	}
	return info, true, nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, ok, _ := Stat(path)
	return ok
}
