package filesystem_test

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/arthur-debert/fileshell/pkg/fileshell/filesystem"
)

func TestOSFileSystem(t *testing.T) {
	tempDir := t.TempDir()
	osfs := filesystem.NewOSFileSystem()

	t.Run("Create and Open", func(t *testing.T) {
		path := filepath.Join(tempDir, "test.txt")

		f, err := osfs.Create(path)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := f.Write([]byte("Hello, World!")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		file, err := osfs.Open(path)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				t.Logf("Warning: failed to close file: %v", closeErr)
			}
		}()

		data, err := io.ReadAll(file)
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}
		if string(data) != "Hello, World!" {
			t.Errorf("Expected content %q, got %q", "Hello, World!", data)
		}
	})

	t.Run("MkdirAll and Stat", func(t *testing.T) {
		dirPath := filepath.Join(tempDir, "nested", "deep", "directory")

		if err := osfs.MkdirAll(dirPath, 0755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}

		info, err := osfs.Stat(dirPath)
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if !info.IsDir() {
			t.Errorf("Expected directory, got file")
		}

		entries, err := osfs.ReadDir(filepath.Join(tempDir, "nested"))
		if err != nil {
			t.Fatalf("ReadDir failed: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "deep" {
			t.Errorf("Unexpected entries: %v", entries)
		}
	})

	t.Run("CreateTemp, Rename and Remove", func(t *testing.T) {
		tmp, err := osfs.CreateTemp(tempDir, ".tmp-*", 0600)
		if err != nil {
			t.Fatalf("CreateTemp failed: %v", err)
		}
		if err := tmp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		target := filepath.Join(tempDir, "renamed.txt")
		if err := osfs.Rename(tmp.Name(), target); err != nil {
			t.Fatalf("Rename failed: %v", err)
		}
		if _, err := osfs.Lstat(target); err != nil {
			t.Fatalf("Lstat after rename failed: %v", err)
		}

		if err := osfs.Remove(target); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if _, err := osfs.Stat(target); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Expected ErrNotExist after remove, got %v", err)
		}
	})

	t.Run("CreateTemp names and modes", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("permission bits are not portable")
		}
		ref, err := os.OpenFile(filepath.Join(tempDir, "ref"), os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			t.Fatalf("OpenFile failed: %v", err)
		}
		_ = ref.Close()
		refInfo, _ := os.Stat(ref.Name())

		tmp, err := osfs.CreateTemp(tempDir, ".out.tmp-*.part", 0666)
		if err != nil {
			t.Fatalf("CreateTemp failed: %v", err)
		}
		_ = tmp.Close()
		base := filepath.Base(tmp.Name())
		if !strings.HasPrefix(base, ".out.tmp-") || !strings.HasSuffix(base, ".part") {
			t.Errorf("Unexpected temp name %q", base)
		}
		info, err := osfs.Stat(tmp.Name())
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if info.Mode().Perm() != refInfo.Mode().Perm() {
			t.Errorf("Expected umask-applied mode %v, got %v", refInfo.Mode().Perm(), info.Mode().Perm())
		}

		if err := osfs.Chmod(tmp.Name(), 0640); err != nil {
			t.Fatalf("Chmod failed: %v", err)
		}
		info, _ = osfs.Stat(tmp.Name())
		if info.Mode().Perm() != 0640 {
			t.Errorf("Expected mode 0640 after Chmod, got %v", info.Mode().Perm())
		}

		if _, err := osfs.CreateTemp(tempDir, "a/b-*", 0666); !errors.Is(err, fs.ErrInvalid) {
			t.Errorf("Expected ErrInvalid for a pattern with a separator, got %v", err)
		}
	})

	t.Run("Relative paths are rejected", func(t *testing.T) {
		if _, err := osfs.Open("relative.txt"); !errors.Is(err, fs.ErrInvalid) {
			t.Errorf("Expected ErrInvalid for relative Open, got %v", err)
		}
		if err := osfs.MkdirAll("rel/dir", 0755); !errors.Is(err, fs.ErrInvalid) {
			t.Errorf("Expected ErrInvalid for relative MkdirAll, got %v", err)
		}
		if err := osfs.Rename(filepath.Join(tempDir, "a"), "b"); !errors.Is(err, fs.ErrInvalid) {
			t.Errorf("Expected ErrInvalid for relative Rename, got %v", err)
		}
	})
}

func TestFaultFileSystem(t *testing.T) {
	tempDir := t.TempDir()
	boom := errors.New("injected")
	ffs := filesystem.NewFaultFileSystem(filesystem.NewOSFileSystem())

	path := filepath.Join(tempDir, "data.txt")
	f, err := ffs.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, _ = f.Write([]byte("payload"))
	_ = f.Close()

	ffs.Inject("read", path, boom)
	file, err := ffs.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = file.Close() }()
	if _, err := io.ReadAll(file); !errors.Is(err, boom) {
		t.Errorf("Expected injected read error, got %v", err)
	}

	ffs.Inject("remove", "", boom)
	if err := ffs.Remove(path); !errors.Is(err, boom) {
		t.Errorf("Expected injected remove error, got %v", err)
	}

	ffs.Inject("chmod", path, boom)
	if err := ffs.Chmod(path, 0600); !errors.Is(err, boom) {
		t.Errorf("Expected injected chmod error, got %v", err)
	}

	ffs.Inject("write", tempDir, boom)
	tmp, err := ffs.CreateTemp(tempDir, ".tmp-*", 0600)
	if err != nil {
		t.Fatalf("CreateTemp failed: %v", err)
	}
	defer func() { _ = tmp.Close() }()
	if _, err := tmp.Write([]byte("x")); !errors.Is(err, boom) {
		t.Errorf("Expected injected write error, got %v", err)
	}
}
