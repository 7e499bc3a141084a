package shell

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/fileshell/pkg/fileshell/operations"
)

// task is one dispatched command.
type task struct {
	id      string
	command string
}

func newTask(id, command string) *task {
	return &task{id: id, command: command}
}

// run executes job, logs its lifecycle and returns the job's error.
func (t *task) run(ctx context.Context, job operations.Job, logger zerolog.Logger) error {
	logger = logger.With().
		Str("task_id", t.id).
		Str("command", t.command).
		Logger()

	start := time.Now()
	logger.Debug().Msg("task started")

	err := job(ctx)

	event := logger.Debug().Dur("duration", time.Since(start))
	if err != nil {
		event = event.Err(err)
	}
	event.Msg("task finished")
	return err
}
