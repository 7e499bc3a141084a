package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// createTempAttempts bounds retries when a generated temp name is taken.
const createTempAttempts = 10

// OSFileSystem implements FileSystem using the OS filesystem
type OSFileSystem struct{}

// NewOSFileSystem creates a new OS-based filesystem
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func checkAbs(op, name string) error {
	if !filepath.IsAbs(name) {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return nil
}

// Open implements ReadFS
func (osfs *OSFileSystem) Open(name string) (fs.File, error) {
	if err := checkAbs("open", name); err != nil {
		return nil, err
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Stat implements ReadFS
func (osfs *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	if err := checkAbs("stat", name); err != nil {
		return nil, err
	}
	return os.Stat(name)
}

// Lstat implements ReadFS
func (osfs *OSFileSystem) Lstat(name string) (fs.FileInfo, error) {
	if err := checkAbs("lstat", name); err != nil {
		return nil, err
	}
	return os.Lstat(name)
}

// ReadDir implements ReadFS
func (osfs *OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	if err := checkAbs("readdir", name); err != nil {
		return nil, err
	}
	return os.ReadDir(name)
}

// Create implements WriteFS
func (osfs *OSFileSystem) Create(name string) (WritableFile, error) {
	if err := checkAbs("create", name); err != nil {
		return nil, err
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// CreateTemp implements WriteFS
func (osfs *OSFileSystem) CreateTemp(dir, pattern string, perm fs.FileMode) (WritableFile, error) {
	if err := checkAbs("createtemp", dir); err != nil {
		return nil, err
	}
	if strings.ContainsRune(pattern, filepath.Separator) {
		return nil, &fs.PathError{Op: "createtemp", Path: pattern, Err: fs.ErrInvalid}
	}
	prefix, suffix := pattern, ""
	if i := strings.LastIndex(pattern, "*"); i >= 0 {
		prefix, suffix = pattern[:i], pattern[i+1:]
	}

	var err error
	for i := 0; i < createTempAttempts; i++ {
		name := filepath.Join(dir, prefix+uuid.NewString()+suffix)
		var f *os.File
		f, err = os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, perm)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, err
		}
	}
	return nil, err
}

// Chmod implements WriteFS
func (osfs *OSFileSystem) Chmod(name string, mode fs.FileMode) error {
	if err := checkAbs("chmod", name); err != nil {
		return err
	}
	return os.Chmod(name, mode)
}

// MkdirAll implements WriteFS
func (osfs *OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	if err := checkAbs("mkdirall", path); err != nil {
		return err
	}
	return os.MkdirAll(path, perm)
}

// Remove implements WriteFS
func (osfs *OSFileSystem) Remove(name string) error {
	if err := checkAbs("remove", name); err != nil {
		return err
	}
	return os.Remove(name)
}

// Rename implements WriteFS
func (osfs *OSFileSystem) Rename(oldpath, newpath string) error {
	if !filepath.IsAbs(oldpath) || !filepath.IsAbs(newpath) {
		return &fs.PathError{Op: "rename", Path: newpath, Err: fs.ErrInvalid}
	}
	return os.Rename(oldpath, newpath)
}
