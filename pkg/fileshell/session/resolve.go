package session

import (
	"path/filepath"
)

// Resolve turns input into an absolute path relative to base.
//
// Absolute inputs ignore base. Relative inputs are joined onto base and
// "." / ".." segments are removed lexically; the filesystem is never
// consulted and symlinks are not followed. Resolve never fails and does not
// check that the result exists.
func Resolve(base, input string) string {
	if filepath.IsAbs(input) {
		return filepath.Clean(input)
	}
	if base == "" {
		base = string(filepath.Separator)
	}
	return filepath.Join(base, input)
}

// Parent returns the lexical parent of path. At the root the root itself is
// returned.
func Parent(path string) string {
	return filepath.Dir(filepath.Clean(path))
}
