package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/fileshell/pkg/fileshell/filesystem"
)

// FileSource reads a file from a filesystem.
type FileSource struct {
	fsys filesystem.ReadFS
	path string
}

// NewFileSource creates a source reading path.
func NewFileSource(fsys filesystem.ReadFS, path string) *FileSource {
	return &FileSource{fsys: fsys, path: path}
}

// Open implements Source
func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := s.fsys.Open(s.path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FileSource) String() string {
	return "file:" + s.path
}

// DefaultFilePerm is the mode new files are created with, before the umask.
const DefaultFilePerm fs.FileMode = 0666

// FileSink writes to a temporary file next to path and renames it into
// place on Commit, so a failed pipeline never leaves a partial file at path.
type FileSink struct {
	fsys filesystem.WriteFS
	path string
	tmp  filesystem.WritableFile

	// mode is applied exactly on Commit when keepMode is set.
	mode     fs.FileMode
	keepMode bool
}

// NewFileSink creates a sink that atomically replaces path. The new file gets
// DefaultFilePerm filtered by the umask.
func NewFileSink(fsys filesystem.WriteFS, path string) *FileSink {
	return &FileSink{fsys: fsys, path: path}
}

// WithMode makes the committed file carry exactly the permission bits of
// mode, as when a copy keeps its source's permissions.
func (s *FileSink) WithMode(mode fs.FileMode) *FileSink {
	s.mode = mode.Perm()
	s.keepMode = true
	return s
}

// Open implements Sink
func (s *FileSink) Open(ctx context.Context) (io.Writer, error) {
	dir, base := filepath.Split(s.path)
	tmp, err := s.fsys.CreateTemp(filepath.Clean(dir), "."+base+".tmp-*", DefaultFilePerm)
	if err != nil {
		return nil, err
	}
	s.tmp = tmp
	return tmp, nil
}

// Commit flushes the temporary file and renames it to the target path.
func (s *FileSink) Commit() error {
	if s.tmp == nil {
		return fmt.Errorf("file sink %s was not opened", s.path)
	}
	tmpName := s.tmp.Name()
	if err := s.tmp.Sync(); err != nil {
		_ = s.Abort()
		return err
	}
	if err := s.tmp.Close(); err != nil {
		s.tmp = nil
		_ = s.fsys.Remove(tmpName)
		return err
	}
	s.tmp = nil
	if s.keepMode {
		if err := s.fsys.Chmod(tmpName, s.mode); err != nil {
			_ = s.fsys.Remove(tmpName)
			return err
		}
	}
	if err := s.fsys.Rename(tmpName, s.path); err != nil {
		_ = s.fsys.Remove(tmpName)
		return err
	}
	return nil
}

// Abort closes and removes the temporary file.
func (s *FileSink) Abort() error {
	if s.tmp == nil {
		return nil
	}
	tmpName := s.tmp.Name()
	_ = s.tmp.Close()
	s.tmp = nil
	return s.fsys.Remove(tmpName)
}

func (s *FileSink) String() string {
	return "file:" + s.path
}

// WriterSink forwards bytes to an existing writer such as the terminal.
// Bytes already written cannot be taken back on Abort.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Open implements Sink
func (s *WriterSink) Open(ctx context.Context) (io.Writer, error) { return s.w, nil }

// Commit implements Sink
func (s *WriterSink) Commit() error { return nil }

// Abort implements Sink
func (s *WriterSink) Abort() error { return nil }

func (s *WriterSink) String() string { return "writer" }

// DigestSink accumulates bytes into a hash.
type DigestSink struct {
	h   hash.Hash
	sum []byte
}

// NewDigestSink creates a sink feeding h.
func NewDigestSink(h hash.Hash) *DigestSink {
	return &DigestSink{h: h}
}

// Open implements Sink
func (s *DigestSink) Open(ctx context.Context) (io.Writer, error) {
	s.h.Reset()
	s.sum = nil
	return s.h, nil
}

// Commit finalises the digest.
func (s *DigestSink) Commit() error {
	s.sum = s.h.Sum(nil)
	return nil
}

// Abort discards the partial digest.
func (s *DigestSink) Abort() error {
	s.h.Reset()
	s.sum = nil
	return nil
}

// Hex returns the committed digest as lowercase hex, or "" before Commit.
func (s *DigestSink) Hex() string {
	if s.sum == nil {
		return ""
	}
	return hex.EncodeToString(s.sum)
}

func (s *DigestSink) String() string { return "digest" }
