package operations

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
	"github.com/arthur-debert/fileshell/pkg/fileshell/session"
)

// RenameHandler renames an entry within its own directory.
type RenameHandler struct {
	baseHandler
}

// NewRenameHandler creates the rn handler.
func NewRenameHandler() *RenameHandler {
	return &RenameHandler{newBaseHandler(core.CommandRn, 2)}
}

// Prepare resolves the source and places newName next to it. A newName with
// a path separator would move the entry elsewhere and is rejected.
func (h *RenameHandler) Prepare(env *Env, args []string) (Job, error) {
	newName := args[1]
	if newName == "." || newName == ".." || strings.ContainsRune(newName, filepath.Separator) || strings.ContainsRune(newName, '/') {
		return nil, core.InvalidInput(h.command.String(), "new name must be a plain file name")
	}
	oldPath := env.Session.Resolve(args[0])
	newPath := filepath.Join(session.Parent(oldPath), newName)

	return func(ctx context.Context) error {
		if err := env.FS.Rename(oldPath, newPath); err != nil {
			return h.fail(oldPath, err)
		}
		env.Println("File renamed to " + newName)
		return nil
	}, nil
}
