package operations

import (
	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
)

// CurrentDirMessage is printed whenever the cursor is reported.
func CurrentDirMessage(dir string) string {
	return "You are currently in " + dir
}

// UpHandler moves the cursor to its parent. It never fails.
type UpHandler struct {
	baseHandler
}

// NewUpHandler creates the up handler.
func NewUpHandler() *UpHandler {
	return &UpHandler{newBaseHandler(core.CommandUp, 0)}
}

// Prepare applies the move immediately.
func (h *UpHandler) Prepare(env *Env, args []string) (Job, error) {
	env.Println(CurrentDirMessage(env.Session.Up()))
	return nil, nil
}

// CdHandler moves the cursor to an existing path.
type CdHandler struct {
	baseHandler
}

// NewCdHandler creates the cd handler.
func NewCdHandler() *CdHandler {
	return &CdHandler{newBaseHandler(core.CommandCd, 1)}
}

// Prepare stats the target and commits the cursor on success. Cursor changes
// happen here rather than in a Job so they apply in the order typed.
func (h *CdHandler) Prepare(env *Env, args []string) (Job, error) {
	target := env.Session.Resolve(args[0])
	if _, err := env.FS.Stat(target); err != nil {
		return nil, h.fail(target, err)
	}
	env.Session.SetCursor(target)
	env.Println(CurrentDirMessage(target))
	return nil, nil
}
