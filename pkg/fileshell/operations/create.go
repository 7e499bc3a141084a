package operations

import (
	"context"

	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
)

// AddHandler creates an empty file. An existing file at the same path is
// truncated.
type AddHandler struct {
	baseHandler
}

// NewAddHandler creates the add handler.
func NewAddHandler() *AddHandler {
	return &AddHandler{newBaseHandler(core.CommandAdd, 1)}
}

// Prepare resolves the filename against the cursor.
func (h *AddHandler) Prepare(env *Env, args []string) (Job, error) {
	name := args[0]
	path := env.Session.Resolve(name)
	return func(ctx context.Context) error {
		f, err := env.FS.Create(path)
		if err != nil {
			return h.fail(path, err)
		}
		if err := f.Close(); err != nil {
			return h.fail(path, err)
		}
		env.Printf("File %s created\n", name)
		return nil
	}, nil
}
