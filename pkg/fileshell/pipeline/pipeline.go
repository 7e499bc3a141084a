package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Source produces the bytes at the head of a pipeline.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// Stage transforms a byte stream. Process reads src until EOF and writes the
// transformed bytes to dst. It must not close dst.
type Stage interface {
	Name() string
	Process(ctx context.Context, dst io.Writer, src io.Reader) error
}

// Sink receives the bytes at the tail of a pipeline. Exactly one of Commit
// or Abort is called after a successful Open.
type Sink interface {
	Open(ctx context.Context) (io.Writer, error)
	Commit() error
	Abort() error
	String() string
}

// Pipeline is a source, zero or more stages and a sink, run as one unit.
type Pipeline struct {
	source Source
	stages []Stage
	sink   Sink
	logger zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for pipeline lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithStages appends transform stages, applied in order.
func WithStages(stages ...Stage) Option {
	return func(p *Pipeline) {
		p.stages = append(p.stages, stages...)
	}
}

// New creates a pipeline from source to sink.
func New(source Source, sink Sink, opts ...Option) *Pipeline {
	p := &Pipeline{
		source: source,
		sink:   sink,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run streams the source through every stage into the sink and returns the
// number of bytes the sink received. The sink is committed only when every
// stage finished without error; otherwise it is aborted. All handles are
// released before Run returns.
func (p *Pipeline) Run(ctx context.Context) (int64, error) {
	start := time.Now()
	p.logger.Debug().
		Str("source", p.source.String()).
		Str("sink", p.sink.String()).
		Int("stages", len(p.stages)).
		Msg("pipeline starting")

	written, err := p.run(ctx)
	if err != nil {
		p.logger.Debug().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("pipeline failed")
		return written, err
	}

	p.logger.Debug().
		Int64("bytes", written).
		Dur("duration", time.Since(start)).
		Msg("pipeline completed")
	return written, nil
}

func (p *Pipeline) run(ctx context.Context) (int64, error) {
	src, err := p.source.Open(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = src.Close()
	}()

	dst, err := p.sink.Open(ctx)
	if err != nil {
		return 0, err
	}
	counter := &countingWriter{w: dst}

	g, gctx := errgroup.WithContext(ctx)

	var (
		readers []*io.PipeReader
		writers []*io.PipeWriter
	)
	// abort unblocks every stage still reading or writing a pipe.
	abort := func(err error) {
		for _, pr := range readers {
			_ = pr.CloseWithError(err)
		}
		for _, pw := range writers {
			_ = pw.CloseWithError(err)
		}
	}

	var in io.Reader = &contextReader{ctx: gctx, r: src}
	for _, stage := range p.stages {
		pr, pw := io.Pipe()
		readers = append(readers, pr)
		writers = append(writers, pw)

		stage, stageIn := stage, in
		g.Go(func() error {
			if err := stage.Process(gctx, pw, stageIn); err != nil {
				err = fmt.Errorf("%s: %w", stage.Name(), err)
				abort(err)
				return err
			}
			return pw.Close()
		})
		in = pr
	}

	g.Go(func() error {
		if _, err := io.Copy(counter, in); err != nil {
			abort(err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if abortErr := p.sink.Abort(); abortErr != nil {
			p.logger.Debug().Err(abortErr).Str("sink", p.sink.String()).Msg("sink abort failed")
		}
		return counter.n, err
	}

	if err := p.sink.Commit(); err != nil {
		return counter.n, err
	}
	return counter.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

// contextReader stops a stream once its context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(b []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(b)
}
