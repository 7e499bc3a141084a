package operations

import (
	"fmt"

	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
)

// Registry maps command names to handlers.
type Registry struct {
	handlers map[core.Command]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[core.Command]Handler)}
}

// Register adds h, replacing any handler already bound to its command.
func (r *Registry) Register(h Handler) {
	r.handlers[h.Command()] = h
}

// Lookup returns the handler for cmd.
func (r *Registry) Lookup(cmd core.Command) (Handler, bool) {
	h, ok := r.handlers[cmd]
	return h, ok
}

// Missing lists the operations that have no handler.
func (r *Registry) Missing() []core.Command {
	var missing []core.Command
	for _, cmd := range core.Operations() {
		if _, ok := r.handlers[cmd]; !ok {
			missing = append(missing, cmd)
		}
	}
	return missing
}

// Prepare looks up the handler for name and prepares it with args.
// Unknown commands and wrong argument counts are invalid input.
func (r *Registry) Prepare(env *Env, name string, args []string) (Job, error) {
	cmd, ok := core.ParseCommand(name)
	if !ok {
		return nil, core.InvalidInput(name, "unknown command")
	}
	h, ok := r.Lookup(cmd)
	if !ok {
		return nil, core.InvalidInput(name, "no handler registered")
	}
	if len(args) != h.Arity() {
		return nil, core.InvalidInput(name, fmt.Sprintf("expected %d argument(s), got %d", h.Arity(), len(args)))
	}
	return h.Prepare(env, args)
}

// DefaultRegistry returns a registry with every operation bound.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, h := range []Handler{
		NewUpHandler(),
		NewCdHandler(),
		NewLsHandler(),
		NewCatHandler(),
		NewAddHandler(),
		NewRenameHandler(),
		NewCopyHandler(),
		NewMoveHandler(),
		NewDeleteHandler(),
		NewHashHandler(),
		NewCompressHandler(),
		NewDecompressHandler(),
		NewOSHandler(),
	} {
		r.Register(h)
	}
	return r
}
