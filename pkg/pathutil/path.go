// Package pathutil implements the engine's path and URL capability: path
// resolution, extension/directory manipulation, and case-sensitivity-aware
// comparison.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve makes path absolute relative to base (the working directory),
// cleaning the result. An already-absolute path is cleaned and returned
// unchanged relative to base.
func Resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(base, path))
}

// Relative returns path expressed relative to base, using forward slashes
// regardless of platform so that it is stable for use in source maps and
// emitted output paths.
func Relative(base, path string) (string, error) {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Dir returns the directory containing path.
func Dir(path string) string {
	return filepath.Dir(path)
}

// ChangeDir returns path with its directory replaced by dir, preserving the
// base name.
func ChangeDir(path, dir string) string {
	return filepath.Join(dir, filepath.Base(path))
}

// Base returns the last element of path.
func Base(path string) string {
	return filepath.Base(path)
}

// Ext returns the extension of path, including the leading dot, or "" if
// path has none.
func Ext(path string) string {
	return filepath.Ext(path)
}

// ChangeExt returns path with its extension replaced by ext (which should
// include the leading dot, or be empty to strip the extension).
func ChangeExt(path, ext string) string {
	trimmed := strings.TrimSuffix(path, filepath.Ext(path))
	return trimmed + ext
}

// InDir reports whether path is inside dir (or equal to it).
func InDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

// caseInsensitive is probed once per process: most build roots live on a
// single filesystem, so a single global probe is enough. PathEqual has no
// per-call override of this setting.
var caseInsensitive = probeCaseInsensitive()

func probeCaseInsensitive() bool {
	// Default by platform rather than probing the filesystem with a scratch
	// file (which would require write access at import time); Windows is
	// case-insensitive, POSIX filesystems are treated as case-sensitive.
	return os.PathSeparator == '\\'
}

// PathEqual reports whether a and b name the same path, honoring the
// platform's case sensitivity.
func PathEqual(a, b string) bool {
	if caseInsensitive {
		return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

// lineCommentExts are extensions whose languages use "//" line comments, so a
// trailing sourceMappingURL comment should use that form rather than a
// "/*...*/" block comment.
var lineCommentExts = map[string]bool{
	".js":  true,
	".mjs": true,
	".cjs": true,
	".ts":  true,
	".jsx": true,
	".tsx": true,
	".go":  true,
	".c":   true,
	".h":   true,
	".cpp": true,
	".java": true,
}

// IsLineCommentExt reports whether path's extension belongs to a language
// using "//" line comments.
func IsLineCommentExt(path string) bool {
	return lineCommentExts[strings.ToLower(Ext(path))]
}
