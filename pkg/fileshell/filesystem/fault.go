package filesystem

import (
	"io/fs"
	"sync"
)

// FaultFileSystem wraps a FileSystem and fails selected calls. It exists so
// tests can exercise failure paths that a real filesystem will not produce
// on demand (for example when tests run as root).
//
// Faults are keyed by operation name and path. An empty path matches every
// path. The operation names are the lower-cased method names plus "read" and
// "write", which fail the Read/Write calls of files returned by Open and
// Create/CreateTemp.
type FaultFileSystem struct {
	FileSystem
	mu     sync.Mutex
	faults map[faultKey]error
}

type faultKey struct {
	op   string
	path string
}

// NewFaultFileSystem wraps base.
func NewFaultFileSystem(base FileSystem) *FaultFileSystem {
	return &FaultFileSystem{FileSystem: base, faults: make(map[faultKey]error)}
}

// Inject makes op on path fail with err.
func (f *FaultFileSystem) Inject(op, path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[faultKey{op, path}] = err
}

func (f *FaultFileSystem) fault(op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.faults[faultKey{op, path}]; ok {
		return err
	}
	return f.faults[faultKey{op, ""}]
}

// Open implements ReadFS
func (f *FaultFileSystem) Open(name string) (fs.File, error) {
	if err := f.fault("open", name); err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	file, err := f.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	if readErr := f.fault("read", name); readErr != nil {
		return &faultyReader{File: file, err: readErr}, nil
	}
	return file, nil
}

// Stat implements ReadFS
func (f *FaultFileSystem) Stat(name string) (fs.FileInfo, error) {
	if err := f.fault("stat", name); err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	return f.FileSystem.Stat(name)
}

// ReadDir implements ReadFS
func (f *FaultFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	if err := f.fault("readdir", name); err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	return f.FileSystem.ReadDir(name)
}

// Create implements WriteFS
func (f *FaultFileSystem) Create(name string) (WritableFile, error) {
	if err := f.fault("create", name); err != nil {
		return nil, &fs.PathError{Op: "create", Path: name, Err: err}
	}
	file, err := f.FileSystem.Create(name)
	if err != nil {
		return nil, err
	}
	return f.wrapWriter(file, name), nil
}

// CreateTemp implements WriteFS
func (f *FaultFileSystem) CreateTemp(dir, pattern string, perm fs.FileMode) (WritableFile, error) {
	if err := f.fault("createtemp", dir); err != nil {
		return nil, &fs.PathError{Op: "createtemp", Path: dir, Err: err}
	}
	file, err := f.FileSystem.CreateTemp(dir, pattern, perm)
	if err != nil {
		return nil, err
	}
	return f.wrapWriter(file, dir), nil
}

// Chmod implements WriteFS
func (f *FaultFileSystem) Chmod(name string, mode fs.FileMode) error {
	if err := f.fault("chmod", name); err != nil {
		return &fs.PathError{Op: "chmod", Path: name, Err: err}
	}
	return f.FileSystem.Chmod(name, mode)
}

// MkdirAll implements WriteFS
func (f *FaultFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	if err := f.fault("mkdirall", path); err != nil {
		return &fs.PathError{Op: "mkdirall", Path: path, Err: err}
	}
	return f.FileSystem.MkdirAll(path, perm)
}

// Remove implements WriteFS
func (f *FaultFileSystem) Remove(name string) error {
	if err := f.fault("remove", name); err != nil {
		return &fs.PathError{Op: "remove", Path: name, Err: err}
	}
	return f.FileSystem.Remove(name)
}

// Rename implements WriteFS
func (f *FaultFileSystem) Rename(oldpath, newpath string) error {
	if err := f.fault("rename", oldpath); err != nil {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: err}
	}
	return f.FileSystem.Rename(oldpath, newpath)
}

func (f *FaultFileSystem) wrapWriter(file WritableFile, key string) WritableFile {
	if err := f.fault("write", key); err != nil {
		return &faultyWriter{WritableFile: file, err: err}
	}
	return file
}

type faultyReader struct {
	fs.File
	err error
}

func (r *faultyReader) Read([]byte) (int, error) {
	return 0, r.err
}

type faultyWriter struct {
	WritableFile
	err error
}

func (w *faultyWriter) Write([]byte) (int, error) {
	return 0, w.err
}
