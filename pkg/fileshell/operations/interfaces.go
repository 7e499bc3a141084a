package operations

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
	"github.com/arthur-debert/fileshell/pkg/fileshell/filesystem"
	"github.com/arthur-debert/fileshell/pkg/fileshell/pipeline"
	"github.com/arthur-debert/fileshell/pkg/fileshell/session"
)

// Env is everything a handler may touch. The shell builds one per session
// and hands it to every Prepare call.
type Env struct {
	Session *session.Session
	FS      filesystem.FileSystem
	// Out receives user-visible output. It must be safe for concurrent use.
	Out    io.Writer
	Logger zerolog.Logger
	Codec  pipeline.Codec
	Locale language.Tag
	// System reports platform metadata for the os command.
	System SystemInfo
}

// Println writes one line of user-visible output.
func (e *Env) Println(a ...interface{}) {
	_, _ = fmt.Fprintln(e.Out, a...)
}

// Printf writes formatted user-visible output.
func (e *Env) Printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(e.Out, format, a...)
}

// Job is the deferred part of a command: the I/O that runs after dispatch.
type Job func(ctx context.Context) error

// Handler implements one command.
type Handler interface {
	Command() core.Command
	// Arity is the exact number of arguments the command takes.
	Arity() int
	// Prepare validates args and resolves every path against the current
	// cursor. It runs on the dispatch goroutine. Commands that finish
	// synchronously return a nil Job.
	Prepare(env *Env, args []string) (Job, error)
}

// baseHandler carries the metadata shared by all handlers.
type baseHandler struct {
	command core.Command
	arity   int
}

func newBaseHandler(command core.Command, arity int) baseHandler {
	return baseHandler{command: command, arity: arity}
}

// Command implements Handler
func (b baseHandler) Command() core.Command { return b.command }

// Arity implements Handler
func (b baseHandler) Arity() int { return b.arity }

// fail wraps err as a command failure on path.
func (b baseHandler) fail(path string, err error) error {
	return core.NewError(core.KindUnknown, b.command.String(), path, err)
}
