package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/gammazero/toposort"
	"github.com/rs/zerolog"
)

// StepID identifies a step within a plan.
type StepID string

// Step is one unit of a composite command.
type Step struct {
	ID        StepID
	DependsOn []StepID
	// Run performs the step.
	Run func(ctx context.Context) error
	// Rollback undoes a step that ran successfully. Optional.
	Rollback func(ctx context.Context) error
}

// StepError reports which step of a plan failed.
type StepError struct {
	Step         StepID
	Completed    []StepID
	Err          error
	RollbackErrs map[StepID]error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
	if len(e.RollbackErrs) > 0 {
		msg += "; rollback also failed:"
		for id, err := range e.RollbackErrs {
			msg += fmt.Sprintf(" %s: %v;", id, err)
		}
	}
	return msg
}

// Unwrap returns the error of the failed step.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Plan is an ordered set of steps. Steps run one at a time in dependency
// order; a step never starts before every step it depends on has returned
// successfully.
type Plan struct {
	steps    []*Step
	idIndex  map[StepID]int
	resolved bool
	logger   zerolog.Logger
}

// New creates an empty plan.
func New(logger zerolog.Logger) *Plan {
	return &Plan{
		idIndex: make(map[StepID]int),
		logger:  logger,
	}
}

// Add appends steps to the plan.
func (p *Plan) Add(steps ...*Step) error {
	for _, step := range steps {
		if step == nil {
			return fmt.Errorf("cannot add a nil step to the plan")
		}
		if step.Run == nil {
			return fmt.Errorf("step %q has no Run function", step.ID)
		}
		if _, exists := p.idIndex[step.ID]; exists {
			return fmt.Errorf("step with ID '%s' already exists in the plan", step.ID)
		}
		p.idIndex[step.ID] = len(p.steps)
		p.steps = append(p.steps, step)
		p.resolved = false
	}
	return nil
}

// Steps returns the steps, in execution order once Resolve has run.
func (p *Plan) Steps() []*Step {
	out := make([]*Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Resolve orders the steps topologically. It fails on unknown dependencies
// and on cycles.
func (p *Plan) Resolve() error {
	if p.resolved {
		return nil
	}

	edges := make([]toposort.Edge, 0)
	for _, step := range p.steps {
		for _, dep := range step.DependsOn {
			if _, ok := p.idIndex[dep]; !ok {
				return fmt.Errorf("step %s depends on unknown step %s", step.ID, dep)
			}
			// Element 0 comes before element 1.
			edges = append(edges, toposort.Edge{string(dep), string(step.ID)})
		}
	}

	sortedIDs, err := toposort.Toposort(edges)
	if err != nil {
		return fmt.Errorf("circular dependency detected: %w", err)
	}

	ordered := make([]*Step, 0, len(p.steps))
	newIndex := make(map[StepID]int, len(p.steps))
	for _, idInterface := range sortedIDs {
		idStr, ok := idInterface.(string)
		if !ok {
			return fmt.Errorf("unexpected type in topological sort result: %T", idInterface)
		}
		id := StepID(idStr)
		if old, exists := p.idIndex[id]; exists {
			newIndex[id] = len(ordered)
			ordered = append(ordered, p.steps[old])
		}
	}
	// Steps outside the dependency graph keep their insertion order.
	for _, step := range p.steps {
		if _, added := newIndex[step.ID]; !added {
			newIndex[step.ID] = len(ordered)
			ordered = append(ordered, step)
		}
	}

	p.steps = ordered
	p.idIndex = newIndex
	p.resolved = true
	return nil
}

// Execute resolves the plan and runs every step in order. On the first
// failure the steps that already succeeded are rolled back in reverse order
// and a *StepError is returned; later steps are not started.
func (p *Plan) Execute(ctx context.Context) error {
	if err := p.Resolve(); err != nil {
		return err
	}

	completed := make([]*Step, 0, len(p.steps))
	for i, step := range p.steps {
		start := time.Now()
		p.logger.Debug().
			Str("step", string(step.ID)).
			Int("index", i+1).
			Int("total", len(p.steps)).
			Msg("running step")

		err := ctx.Err()
		if err == nil {
			err = step.Run(ctx)
		}
		if err != nil {
			p.logger.Debug().
				Str("step", string(step.ID)).
				Err(err).
				Msg("step failed, rolling back")
			return p.rollback(ctx, step.ID, completed, err)
		}

		p.logger.Debug().
			Str("step", string(step.ID)).
			Dur("duration", time.Since(start)).
			Msg("step completed")
		completed = append(completed, step)
	}
	return nil
}

func (p *Plan) rollback(ctx context.Context, failed StepID, completed []*Step, cause error) error {
	stepErr := &StepError{Step: failed, Err: cause}
	for _, step := range completed {
		stepErr.Completed = append(stepErr.Completed, step.ID)
	}

	// Rollback runs even when ctx is done so the filesystem is left tidy.
	rctx := context.WithoutCancel(ctx)
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Rollback == nil {
			continue
		}
		if err := step.Rollback(rctx); err != nil {
			if stepErr.RollbackErrs == nil {
				stepErr.RollbackErrs = make(map[StepID]error)
			}
			stepErr.RollbackErrs[step.ID] = err
			p.logger.Warn().
				Str("step", string(step.ID)).
				Err(err).
				Msg("rollback failed")
		}
	}
	return stepErr
}
