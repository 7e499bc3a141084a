package operations

import (
	"context"
	"errors"

	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
	"github.com/arthur-debert/fileshell/pkg/fileshell/pipeline"
)

// CodecHandler runs a file through the session codec in one direction.
type CodecHandler struct {
	baseHandler
	decompress bool
	success    string
}

// NewCompressHandler creates the compress handler.
func NewCompressHandler() *CodecHandler {
	return &CodecHandler{
		baseHandler: newBaseHandler(core.CommandCompress, 2),
		success:     "File compressed successfully",
	}
}

// NewDecompressHandler creates the decompress handler.
func NewDecompressHandler() *CodecHandler {
	return &CodecHandler{
		baseHandler: newBaseHandler(core.CommandDecompress, 2),
		decompress:  true,
		success:     "File decompressed successfully",
	}
}

// Prepare resolves both paths. dest names the output file itself.
func (h *CodecHandler) Prepare(env *Env, args []string) (Job, error) {
	src := env.Session.Resolve(args[0])
	dst := env.Session.Resolve(args[1])
	codec := env.Codec

	return func(ctx context.Context) error {
		if codec == nil {
			var err error
			if codec, err = pipeline.CodecByName(pipeline.DefaultCodec); err != nil {
				return h.fail(src, err)
			}
		}
		info, _, err := checkDistinct(env.FS, h.command.String(), src, dst)
		if err != nil {
			return h.fail(src, err)
		}
		if info.IsDir() {
			return core.NewError(core.KindIsDirectory, h.command.String(), src, errors.New("only files can be processed"))
		}

		stage := codec.Compressor()
		if h.decompress {
			stage = codec.Decompressor()
		}

		_, err = pipeline.New(
			pipeline.NewFileSource(env.FS, src),
			pipeline.NewFileSink(env.FS, dst),
			pipeline.WithStages(stage),
			pipeline.WithLogger(env.Logger.With().Str("codec", codec.Name()).Logger()),
		).Run(ctx)
		if err != nil {
			return h.fail(src, err)
		}
		env.Println(h.success)
		return nil
	}, nil
}
