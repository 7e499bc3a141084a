package operations

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
	"github.com/arthur-debert/fileshell/pkg/fileshell/filesystem"
	"github.com/arthur-debert/fileshell/pkg/fileshell/pipeline"
	"github.com/arthur-debert/fileshell/pkg/fileshell/plan"
)

// Step identifiers used by cp and mv plans.
const (
	StepMkdir        plan.StepID = "mkdir"
	StepCopy         plan.StepID = "copy"
	StepRemoveSource plan.StepID = "remove-source"
)

// CopyHandler copies a file into a directory, keeping its base name.
type CopyHandler struct {
	baseHandler
}

// NewCopyHandler creates the cp handler.
func NewCopyHandler() *CopyHandler {
	return &CopyHandler{newBaseHandler(core.CommandCp, 2)}
}

// Prepare resolves source and destination.
func (h *CopyHandler) Prepare(env *Env, args []string) (Job, error) {
	src, dst := copyPaths(env, args)
	return func(ctx context.Context) error {
		p, err := buildCopyPlan(env, h.baseHandler, src, dst)
		if err != nil {
			return err
		}
		if err := p.Execute(ctx); err != nil {
			return h.fail(src, err)
		}
		env.Println("File copied successfully")
		return nil
	}, nil
}

// MoveHandler copies a file into a directory and then removes the source.
// The source is only removed once the copy has been committed.
type MoveHandler struct {
	baseHandler
}

// NewMoveHandler creates the mv handler.
func NewMoveHandler() *MoveHandler {
	return &MoveHandler{newBaseHandler(core.CommandMv, 2)}
}

// Prepare resolves source and destination.
func (h *MoveHandler) Prepare(env *Env, args []string) (Job, error) {
	src, dst := copyPaths(env, args)
	return func(ctx context.Context) error {
		p, err := buildCopyPlan(env, h.baseHandler, src, dst)
		if err != nil {
			return err
		}
		err = p.Add(&plan.Step{
			ID:        StepRemoveSource,
			DependsOn: []plan.StepID{StepCopy},
			Run: func(ctx context.Context) error {
				return env.FS.Remove(src)
			},
		})
		if err != nil {
			return err
		}
		if err := p.Execute(ctx); err != nil {
			return h.fail(src, err)
		}
		env.Println("File moved successfully")
		return nil
	}, nil
}

// copyPaths returns the resolved source and the destination file, which is
// the destination directory joined with the source's base name.
func copyPaths(env *Env, args []string) (src, dst string) {
	src = env.Session.Resolve(args[0])
	destDir := env.Session.Resolve(args[1])
	return src, filepath.Join(destDir, filepath.Base(src))
}

// buildCopyPlan returns a plan that creates the destination directory and
// then streams src into dst. Rolling back the copy removes dst unless it
// existed beforehand.
func buildCopyPlan(env *Env, h baseHandler, src, dst string) (*plan.Plan, error) {
	var created bool

	p := plan.New(env.Logger.With().
		Str("command", h.command.String()).
		Str("src", src).
		Str("dst", dst).
		Logger())

	err := p.Add(
		&plan.Step{
			ID: StepMkdir,
			Run: func(ctx context.Context) error {
				return env.FS.MkdirAll(filepath.Dir(dst), 0755)
			},
		},
		&plan.Step{
			ID:        StepCopy,
			DependsOn: []plan.StepID{StepMkdir},
			Run: func(ctx context.Context) error {
				info, exists, err := checkDistinct(env.FS, string(StepCopy), src, dst)
				if err != nil {
					return err
				}
				if info.IsDir() {
					return core.NewError(core.KindIsDirectory, string(StepCopy), src, errors.New("only files can be copied"))
				}
				created = !exists

				_, err = pipeline.New(
					pipeline.NewFileSource(env.FS, src),
					pipeline.NewFileSink(env.FS, dst).WithMode(info.Mode()),
					pipeline.WithLogger(env.Logger),
				).Run(ctx)
				return err
			},
			Rollback: func(ctx context.Context) error {
				if !created {
					return nil
				}
				return env.FS.Remove(dst)
			},
		},
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// checkDistinct stats src and dst and fails with KindSamePath when dst
// already names the file at src, whether by the same path or through an alias
// such as a symlinked directory or a hard link. exists reports whether dst
// was present.
func checkDistinct(fsys filesystem.ReadFS, op, src, dst string) (info fs.FileInfo, exists bool, err error) {
	if src == dst {
		return nil, false, core.NewError(core.KindSamePath, op, src, errors.New("source and destination are the same file"))
	}
	info, err = fsys.Stat(src)
	if err != nil {
		return nil, false, err
	}
	dstInfo, err := fsys.Stat(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return info, false, nil
	case err != nil:
		return nil, false, err
	case os.SameFile(info, dstInfo):
		return nil, true, core.NewError(core.KindSamePath, op, dst, errors.New("destination is an alias of the source"))
	}
	return info, true, nil
}
