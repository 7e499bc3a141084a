package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
)

// Codec is a symmetric streaming compression format.
type Codec interface {
	Name() string
	// Compressor returns the forward stage.
	Compressor() Stage
	// Decompressor returns the inverse stage.
	Decompressor() Stage
}

// DefaultCodec is used when no codec is configured.
const DefaultCodec = "zstd"

var codecs = map[string]Codec{
	"zstd":   zstdCodec{},
	"gzip":   gzipCodec{},
	"brotli": brotliCodec{},
}

// CodecByName looks up a codec.
func CodecByName(name string) (Codec, error) {
	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("unknown codec %q (available: %v)", name, CodecNames())
	}
	return c, nil
}

// CodecNames lists the registered codecs in sorted order.
func CodecNames() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	name    string
	process func(ctx context.Context, dst io.Writer, src io.Reader) error
}

// NewStage creates a named stage from fn.
func NewStage(name string, fn func(ctx context.Context, dst io.Writer, src io.Reader) error) *StageFunc {
	return &StageFunc{name: name, process: fn}
}

// Name implements Stage
func (s *StageFunc) Name() string { return s.name }

// Process implements Stage
func (s *StageFunc) Process(ctx context.Context, dst io.Writer, src io.Reader) error {
	return s.process(ctx, dst, src)
}

type zstdCodec struct{}

func (zstdCodec) Name() string { return "zstd" }

func (zstdCodec) Compressor() Stage {
	return NewStage("zstd-compress", func(ctx context.Context, dst io.Writer, src io.Reader) error {
		enc, err := zstd.NewWriter(dst, zstd.WithZeroFrames(true))
		if err != nil {
			return err
		}
		if _, err := io.Copy(enc, src); err != nil {
			_ = enc.Close()
			return err
		}
		return enc.Close()
	})
}

func (zstdCodec) Decompressor() Stage {
	return NewStage("zstd-decompress", func(ctx context.Context, dst io.Writer, src io.Reader) error {
		dec, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return core.NewError(core.KindCodec, "zstd-decompress", "", err)
		}
		defer dec.Close()
		return decodeInto(dst, dec, "zstd-decompress")
	})
}

type gzipCodec struct{}

func (gzipCodec) Name() string { return "gzip" }

func (gzipCodec) Compressor() Stage {
	return NewStage("gzip-compress", func(ctx context.Context, dst io.Writer, src io.Reader) error {
		zw := gzip.NewWriter(dst)
		if _, err := io.Copy(zw, src); err != nil {
			_ = zw.Close()
			return err
		}
		return zw.Close()
	})
}

func (gzipCodec) Decompressor() Stage {
	return NewStage("gzip-decompress", func(ctx context.Context, dst io.Writer, src io.Reader) error {
		zr, err := gzip.NewReader(src)
		if err != nil {
			return core.NewError(core.KindCodec, "gzip-decompress", "", err)
		}
		if err := decodeInto(dst, zr, "gzip-decompress"); err != nil {
			_ = zr.Close()
			return err
		}
		if err := zr.Close(); err != nil {
			return core.NewError(core.KindCodec, "gzip-decompress", "", err)
		}
		return nil
	})
}

// brotliCodec reads and writes raw Brotli streams, the format produced by
// Node's zlib Brotli streams.
type brotliCodec struct{}

func (brotliCodec) Name() string { return "brotli" }

func (brotliCodec) Compressor() Stage {
	return NewStage("brotli-compress", func(ctx context.Context, dst io.Writer, src io.Reader) error {
		bw := brotli.NewWriter(dst)
		if _, err := io.Copy(bw, src); err != nil {
			_ = bw.Close()
			return err
		}
		return bw.Close()
	})
}

func (brotliCodec) Decompressor() Stage {
	return NewStage("brotli-decompress", func(ctx context.Context, dst io.Writer, src io.Reader) error {
		return decodeInto(dst, brotli.NewReader(src), "brotli-decompress")
	})
}

// decodeInto copies decoded bytes to dst. Failures writing dst keep their
// own classification; anything else came from the decoder.
func decodeInto(dst io.Writer, decoded io.Reader, op string) error {
	tw := &trackingWriter{w: dst}
	if _, err := io.Copy(tw, decoded); err != nil {
		if tw.err != nil && errors.Is(err, tw.err) {
			return err
		}
		return core.NewError(core.KindCodec, op, "", err)
	}
	return nil
}

type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(b []byte) (int, error) {
	n, err := t.w.Write(b)
	if err != nil {
		t.err = err
	}
	return n, err
}
