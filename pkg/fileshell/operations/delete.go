package operations

import (
	"context"
	"errors"

	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
)

// DeleteHandler removes a single file. Directories are refused.
type DeleteHandler struct {
	baseHandler
}

// NewDeleteHandler creates the rm handler.
func NewDeleteHandler() *DeleteHandler {
	return &DeleteHandler{newBaseHandler(core.CommandRm, 1)}
}

// Prepare resolves the path.
func (h *DeleteHandler) Prepare(env *Env, args []string) (Job, error) {
	path := env.Session.Resolve(args[0])
	return func(ctx context.Context) error {
		info, err := env.FS.Lstat(path)
		if err != nil {
			return h.fail(path, err)
		}
		if info.IsDir() {
			return core.NewError(core.KindIsDirectory, h.command.String(), path, errors.New("rm only removes files"))
		}
		if err := env.FS.Remove(path); err != nil {
			return h.fail(path, err)
		}
		env.Println("File deleted successfully")
		return nil
	}, nil
}
