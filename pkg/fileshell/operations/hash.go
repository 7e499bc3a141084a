package operations

import (
	"context"
	"crypto/sha256"

	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
	"github.com/arthur-debert/fileshell/pkg/fileshell/pipeline"
)

// HashHandler prints the SHA-256 digest of a file.
type HashHandler struct {
	baseHandler
}

// NewHashHandler creates the hash handler.
func NewHashHandler() *HashHandler {
	return &HashHandler{newBaseHandler(core.CommandHash, 1)}
}

// Prepare resolves the path.
func (h *HashHandler) Prepare(env *Env, args []string) (Job, error) {
	path := env.Session.Resolve(args[0])
	return func(ctx context.Context) error {
		sink := pipeline.NewDigestSink(sha256.New())
		_, err := pipeline.New(
			pipeline.NewFileSource(env.FS, path),
			sink,
			pipeline.WithLogger(env.Logger),
		).Run(ctx)
		if err != nil {
			return h.fail(path, err)
		}
		env.Println(sink.Hex())
		return nil
	}, nil
}
