package filesystem

import (
	"io"
	"io/fs"
)

// WritableFile is a file opened for writing.
type WritableFile interface {
	io.WriteCloser
	Name() string
	Sync() error
}

// ReadFS defines the read side of a file system. All paths are absolute.
type ReadFS interface {
	Open(name string) (fs.File, error)
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
}

// WriteFS defines the interface for write operations on a file system.
type WriteFS interface {
	// Create opens name for writing, creating or truncating it.
	Create(name string) (WritableFile, error)
	// CreateTemp creates a new uniquely named file in dir. The last "*" in
	// pattern is replaced by a random string. perm is subject to the umask.
	CreateTemp(dir, pattern string, perm fs.FileMode) (WritableFile, error)
	// Chmod sets the permission bits of name, ignoring the umask.
	Chmod(name string, mode fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Remove(name string) error
	Rename(oldpath, newpath string) error
}

// FileSystem combines read and write operations.
type FileSystem interface {
	ReadFS
	WriteFS
}
