package pipeline_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
	"github.com/arthur-debert/fileshell/pkg/fileshell/filesystem"
	"github.com/arthur-debert/fileshell/pkg/fileshell/pipeline"
)

const emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFileToFile(t *testing.T) {
	dir := t.TempDir()
	fsys := filesystem.NewOSFileSystem()
	content := randomBytes(t, 256*1024+17)
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	writeFile(t, src, content)

	n, err := pipeline.New(
		pipeline.NewFileSource(fsys, src),
		pipeline.NewFileSink(fsys, dst),
	).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(content, got), "copied bytes differ")
	assert.ElementsMatch(t, []string{"src.bin", "dst.bin"}, dirEntries(t, dir))
}

func TestFileSinkReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	fsys := filesystem.NewOSFileSystem()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	writeFile(t, src, []byte("new"))
	writeFile(t, dst, []byte("old content that is longer"))

	_, err := pipeline.New(pipeline.NewFileSource(fsys, src), pipeline.NewFileSink(fsys, dst)).Run(context.Background())
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestDigestSink(t *testing.T) {
	dir := t.TempDir()
	fsys := filesystem.NewOSFileSystem()

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty")
		writeFile(t, path, nil)

		sink := pipeline.NewDigestSink(sha256.New())
		_, err := pipeline.New(pipeline.NewFileSource(fsys, path), sink).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, emptySHA256, sink.Hex())
	})

	t.Run("matches one-shot digest", func(t *testing.T) {
		path := filepath.Join(dir, "data")
		content := randomBytes(t, 100000)
		writeFile(t, path, content)

		sink := pipeline.NewDigestSink(sha256.New())
		_, err := pipeline.New(pipeline.NewFileSource(fsys, path), sink).Run(context.Background())
		require.NoError(t, err)

		want := sha256.Sum256(content)
		assert.Equal(t, hex.EncodeToString(want[:]), sink.Hex())
	})

	t.Run("read error yields no digest", func(t *testing.T) {
		path := filepath.Join(dir, "broken")
		writeFile(t, path, []byte("abc"))
		ffs := filesystem.NewFaultFileSystem(fsys)
		ffs.Inject("read", path, errors.New("disk on fire"))

		sink := pipeline.NewDigestSink(sha256.New())
		_, err := pipeline.New(pipeline.NewFileSource(ffs, path), sink).Run(context.Background())
		require.Error(t, err)
		assert.Empty(t, sink.Hex())
	})
}

func TestRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 1024, 3*1024*1024 + 5}

	for _, name := range pipeline.CodecNames() {
		codec, err := pipeline.CodecByName(name)
		require.NoError(t, err)

		for _, size := range sizes {
			t.Run(name, func(t *testing.T) {
				dir := t.TempDir()
				fsys := filesystem.NewOSFileSystem()
				content := randomBytes(t, size)
				plain := filepath.Join(dir, "plain")
				packed := filepath.Join(dir, "packed")
				restored := filepath.Join(dir, "restored")
				writeFile(t, plain, content)

				_, err := pipeline.New(
					pipeline.NewFileSource(fsys, plain),
					pipeline.NewFileSink(fsys, packed),
					pipeline.WithStages(codec.Compressor()),
				).Run(context.Background())
				require.NoError(t, err)

				_, err = pipeline.New(
					pipeline.NewFileSource(fsys, packed),
					pipeline.NewFileSink(fsys, restored),
					pipeline.WithStages(codec.Decompressor()),
				).Run(context.Background())
				require.NoError(t, err)

				got, err := os.ReadFile(restored)
				require.NoError(t, err)
				assert.True(t, bytes.Equal(content, got), "round trip of %d bytes differs", size)
			})
		}
	}
}

func TestChainedStages(t *testing.T) {
	dir := t.TempDir()
	fsys := filesystem.NewOSFileSystem()
	content := bytes.Repeat([]byte("chained stages "), 50000)
	src := filepath.Join(dir, "src")
	writeFile(t, src, content)

	codec, err := pipeline.CodecByName(pipeline.DefaultCodec)
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = pipeline.New(
		pipeline.NewFileSource(fsys, src),
		pipeline.NewWriterSink(&out),
		pipeline.WithStages(codec.Compressor(), codec.Decompressor()),
	).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(content, out.Bytes()))
}

func TestDecompressGarbage(t *testing.T) {
	for _, name := range pipeline.CodecNames() {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			fsys := filesystem.NewOSFileSystem()
			src := filepath.Join(dir, "garbage")
			dst := filepath.Join(dir, "out")
			writeFile(t, src, []byte("this is definitely not a compressed stream"))

			codec, err := pipeline.CodecByName(name)
			require.NoError(t, err)

			_, err = pipeline.New(
				pipeline.NewFileSource(fsys, src),
				pipeline.NewFileSink(fsys, dst),
				pipeline.WithStages(codec.Decompressor()),
			).Run(context.Background())
			require.Error(t, err)
			assert.Equal(t, core.KindCodec, core.KindOf(err))

			_, statErr := os.Stat(dst)
			assert.True(t, os.IsNotExist(statErr), "no output file should exist")
			assert.Equal(t, []string{"garbage"}, dirEntries(t, dir))
		})
	}
}

func TestFailuresLeaveNoPartialOutput(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		dir := t.TempDir()
		fsys := filesystem.NewOSFileSystem()

		_, err := pipeline.New(
			pipeline.NewFileSource(fsys, filepath.Join(dir, "missing")),
			pipeline.NewFileSink(fsys, filepath.Join(dir, "out")),
		).Run(context.Background())
		require.Error(t, err)
		assert.Equal(t, core.KindNotFound, core.KindOf(err))
		assert.Empty(t, dirEntries(t, dir))
	})

	t.Run("read error mid stream", func(t *testing.T) {
		dir := t.TempDir()
		fsys := filesystem.NewFaultFileSystem(filesystem.NewOSFileSystem())
		src := filepath.Join(dir, "src")
		writeFile(t, src, []byte("some bytes"))
		fsys.Inject("read", src, errors.New("bad sector"))

		codec, err := pipeline.CodecByName("gzip")
		require.NoError(t, err)

		_, err = pipeline.New(
			pipeline.NewFileSource(fsys, src),
			pipeline.NewFileSink(fsys, filepath.Join(dir, "out")),
			pipeline.WithStages(codec.Compressor()),
		).Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad sector")
		assert.Equal(t, []string{"src"}, dirEntries(t, dir))
	})

	t.Run("write error", func(t *testing.T) {
		dir := t.TempDir()
		fsys := filesystem.NewFaultFileSystem(filesystem.NewOSFileSystem())
		src := filepath.Join(dir, "src")
		writeFile(t, src, []byte("some bytes"))
		fsys.Inject("write", dir, errors.New("disk full"))

		_, err := pipeline.New(
			pipeline.NewFileSource(fsys, src),
			pipeline.NewFileSink(fsys, filepath.Join(dir, "out")),
		).Run(context.Background())
		require.Error(t, err)
		assert.Equal(t, []string{"src"}, dirEntries(t, dir))
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := t.TempDir()
		fsys := filesystem.NewOSFileSystem()
		src := filepath.Join(dir, "src")
		writeFile(t, src, []byte("some bytes"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := pipeline.New(
			pipeline.NewFileSource(fsys, src),
			pipeline.NewFileSink(fsys, filepath.Join(dir, "out")),
		).Run(ctx)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []string{"src"}, dirEntries(t, dir))
	})
}

func TestCodecByNameUnknown(t *testing.T) {
	_, err := pipeline.CodecByName("lz4")
	assert.Error(t, err)
	assert.Equal(t, []string{"brotli", "gzip", "zstd"}, pipeline.CodecNames())
}

// umaskedPerm returns the mode a plain create with DefaultFilePerm gets in dir.
func umaskedPerm(t *testing.T, dir string) os.FileMode {
	t.Helper()
	ref := filepath.Join(dir, ".umask-ref")
	f, err := os.OpenFile(ref, os.O_CREATE|os.O_WRONLY, pipeline.DefaultFilePerm)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	info, err := os.Stat(ref)
	require.NoError(t, err)
	require.NoError(t, os.Remove(ref))
	return info.Mode().Perm()
}

func TestFileSinkPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not portable")
	}

	t.Run("default follows the umask", func(t *testing.T) {
		dir := t.TempDir()
		fsys := filesystem.NewOSFileSystem()
		src := filepath.Join(dir, "src")
		dst := filepath.Join(dir, "dst")
		writeFile(t, src, []byte("data"))
		want := umaskedPerm(t, dir)

		_, err := pipeline.New(pipeline.NewFileSource(fsys, src), pipeline.NewFileSink(fsys, dst)).Run(context.Background())
		require.NoError(t, err)

		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, want, info.Mode().Perm())
	})

	t.Run("explicit mode is applied exactly", func(t *testing.T) {
		dir := t.TempDir()
		fsys := filesystem.NewOSFileSystem()
		src := filepath.Join(dir, "src")
		dst := filepath.Join(dir, "dst")
		writeFile(t, src, []byte("data"))

		_, err := pipeline.New(
			pipeline.NewFileSource(fsys, src),
			pipeline.NewFileSink(fsys, dst).WithMode(0754),
		).Run(context.Background())
		require.NoError(t, err)

		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0754), info.Mode().Perm())
	})

	t.Run("chmod failure leaves no output", func(t *testing.T) {
		dir := t.TempDir()
		fsys := filesystem.NewFaultFileSystem(filesystem.NewOSFileSystem())
		src := filepath.Join(dir, "src")
		writeFile(t, src, []byte("data"))
		fsys.Inject("chmod", "", errors.New("read-only mount"))

		_, err := pipeline.New(
			pipeline.NewFileSource(fsys, src),
			pipeline.NewFileSink(fsys, filepath.Join(dir, "dst")).WithMode(0644),
		).Run(context.Background())
		require.Error(t, err)
		assert.Equal(t, []string{"src"}, dirEntries(t, dir))
	})
}
