package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
	"github.com/arthur-debert/fileshell/pkg/fileshell/operations"
)

// User-visible messages.
const (
	MsgInvalidInput    = "Invalid input"
	MsgOperationFailed = "Operation failed"
	DefaultPrompt      = "> "
)

// WelcomeMessage greets name on startup.
func WelcomeMessage(name string) string {
	return fmt.Sprintf("Welcome to the File Manager, %s!", name)
}

// FarewellMessage is printed when the shell closes.
func FarewellMessage(name string) string {
	return fmt.Sprintf("Thank you for using File Manager, %s, goodbye!", name)
}

// IDGenerator returns a new task ID for command.
type IDGenerator func(command string) string

// Options tune the shell loop.
type Options struct {
	// Prompt is printed before each line is read. Empty disables it.
	Prompt string
	// Concurrency is the number of commands that may run at once. With 1
	// each command finishes before the next prompt.
	Concurrency int
	// ErrorDetail appends the error kind to failure messages.
	ErrorDetail bool
	// Color highlights failure messages.
	Color  bool
	NewID  IDGenerator
	Logger zerolog.Logger
}

// Shell reads commands line by line and dispatches them to the registry.
type Shell struct {
	in       *bufio.Reader
	out      *syncWriter
	env      operations.Env
	registry *operations.Registry
	parser   Parser
	opts     Options
	logger   zerolog.Logger

	sem       *semaphore.Weighted
	inflight  sync.WaitGroup
	failColor *color.Color
}

// New creates a shell. env.Out is replaced by a writer shared with the
// shell's own output.
func New(in io.Reader, out io.Writer, env operations.Env, registry *operations.Registry, opts Options) *Shell {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.NewID == nil {
		opts.NewID = counterIDs()
	}

	w := &syncWriter{w: out}
	env.Out = w

	s := &Shell{
		in:       bufio.NewReader(in),
		out:      w,
		env:      env,
		registry: registry,
		parser:   NewDefaultParser(),
		opts:     opts,
		logger:   opts.Logger,
		sem:      semaphore.NewWeighted(int64(opts.Concurrency)),
	}
	if opts.Color {
		s.failColor = color.New(color.FgRed)
		s.failColor.EnableColor()
	}
	return s
}

// Run prints the welcome banner and processes input until .exit, end of
// input, a read error or cancellation of ctx. In-flight commands are always
// awaited before the farewell is printed. Run returns nil on every normal
// close.
func (s *Shell) Run(ctx context.Context) error {
	name := s.env.Session.DisplayName()
	s.println(WelcomeMessage(name))
	s.println(operations.CurrentDirMessage(s.env.Session.Cursor()))

	stop := make(chan struct{})
	defer close(stop)
	lines := make(chan readResult)
	go s.readLines(lines, stop)

loop:
	for ctx.Err() == nil {
		if s.opts.Prompt != "" {
			_, _ = io.WriteString(s.out, s.opts.Prompt)
		}

		var r readResult
		select {
		case <-ctx.Done():
			break loop
		case r = <-lines:
		}

		if r.line != "" {
			if exit := s.handle(ctx, r.line); exit {
				break
			}
		}
		if r.err != nil {
			if !errors.Is(r.err, io.EOF) {
				s.logger.Warn().Err(r.err).Msg("failed to read input, closing")
			}
			break
		}
	}

	s.Wait()
	s.println(FarewellMessage(name))
	return nil
}

type readResult struct {
	line string
	err  error
}

// readLines feeds input lines to out until a read error or stop is closed.
func (s *Shell) readLines(out chan<- readResult, stop <-chan struct{}) {
	for {
		line, err := s.in.ReadString('\n')
		select {
		case out <- readResult{line: line, err: err}:
		case <-stop:
			return
		}
		if err != nil {
			return
		}
	}
}

// Wait blocks until every dispatched command has finished.
func (s *Shell) Wait() {
	s.inflight.Wait()
}

// handle processes one line and reports whether the shell should close.
func (s *Shell) handle(ctx context.Context, line string) bool {
	fields, err := s.parser.Parse(line)
	if err != nil {
		s.report(core.InvalidInput("parse", err.Error()))
		return false
	}
	if len(fields) == 0 {
		return false
	}
	if cmd, ok := core.ParseCommand(fields[0]); ok && cmd == core.CommandExit {
		return true
	}

	job, err := s.registry.Prepare(&s.env, fields[0], fields[1:])
	if err != nil {
		s.report(err)
		return false
	}
	if job == nil {
		return false
	}

	s.dispatch(ctx, newTask(s.opts.NewID(fields[0]), fields[0]), job)
	return false
}

// dispatch runs job as task. With a concurrency of one it blocks until the
// task is done; otherwise it blocks only while the limit is reached.
func (s *Shell) dispatch(ctx context.Context, t *task, job operations.Job) {
	if s.opts.Concurrency == 1 {
		s.report(t.run(ctx, job, s.logger))
		return
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.report(core.NewError(core.KindIO, t.command, "", err))
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer s.sem.Release(1)
		s.report(t.run(ctx, job, s.logger))
	}()
}

// report renders err at the boundary. Only the kind is ever shown.
func (s *Shell) report(err error) {
	if err == nil {
		return
	}
	kind := core.KindOf(err)
	s.logger.Debug().Err(err).Str("kind", kind.String()).Msg("command failed")

	msg := MsgOperationFailed
	if kind == core.KindInvalidInput {
		msg = MsgInvalidInput
	}
	if s.opts.ErrorDetail {
		msg += ": " + kind.String()
	}
	if s.failColor != nil {
		msg = s.failColor.Sprint(msg)
	}
	s.println(msg)
}

func (s *Shell) println(line string) {
	_, _ = io.WriteString(s.out, line+"\n")
}

// syncWriter serialises writes from concurrently running commands.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func counterIDs() IDGenerator {
	var n atomic.Uint64
	return func(command string) string {
		return command + "-" + strconv.FormatUint(n.Add(1), 10)
	}
}
