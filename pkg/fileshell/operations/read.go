package operations

import (
	"context"
	"io"

	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
	"github.com/arthur-debert/fileshell/pkg/fileshell/pipeline"
)

// CatHandler streams a file to the shell output.
type CatHandler struct {
	baseHandler
}

// NewCatHandler creates the cat handler.
func NewCatHandler() *CatHandler {
	return &CatHandler{newBaseHandler(core.CommandCat, 1)}
}

// Prepare resolves the path.
func (h *CatHandler) Prepare(env *Env, args []string) (Job, error) {
	path := env.Session.Resolve(args[0])
	return func(ctx context.Context) error {
		out := &tailWriter{w: env.Out}
		_, err := pipeline.New(
			pipeline.NewFileSource(env.FS, path),
			pipeline.NewWriterSink(out),
			pipeline.WithLogger(env.Logger),
		).Run(ctx)
		if out.last != 0 && out.last != '\n' {
			env.Println()
		}
		if err != nil {
			return h.fail(path, err)
		}
		return nil
	}, nil
}

// tailWriter remembers the last byte written so a missing final newline can
// be supplied before the next prompt.
type tailWriter struct {
	w    io.Writer
	last byte
}

func (t *tailWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if n > 0 {
		t.last = p[n-1]
	}
	return n, err
}
