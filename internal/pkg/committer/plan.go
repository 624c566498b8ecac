// Package committer implements the compensation plan used by composite
// creation flows. Neither backend offers a cross-collection transaction, so
// all-or-nothing semantics are simulated: each successful write registers
// an undo step, and on failure the plan rolls back everything best-effort.
package committer

import (
	"context"
	"log/slog"
)

// step is one registered compensating action.
type step struct {
	name string
	undo func(context.Context) error
}

// Plan collects compensating actions in registration order.
type Plan struct {
	steps  []step
	logger *slog.Logger
}

// NewPlan creates an empty compensation plan.
func NewPlan(logger *slog.Logger) *Plan {
	if logger == nil {
		logger = slog.Default()
	}
	return &Plan{logger: logger}
}

// Add registers a compensating action for a write that just succeeded.
// Nil undo functions are silently ignored for convenience.
func (p *Plan) Add(name string, undo func(context.Context) error) {
	if undo != nil {
		p.steps = append(p.steps, step{name: name, undo: undo})
	}
}

// Count returns the number of registered steps.
func (p *Plan) Count() int {
	return len(p.steps)
}

// Rollback runs every compensating action in reverse registration order.
// Rollback failures are logged and swallowed: the primary error that
// triggered the rollback is the one the caller reports, and a partially
// failed rollback must not mask it.
func (p *Plan) Rollback(ctx context.Context) {
	for i := len(p.steps) - 1; i >= 0; i-- {
		s := p.steps[i]
		if err := s.undo(ctx); err != nil {
			p.logger.Error("rollback step failed",
				slog.String("step", s.name),
				slog.String("error", err.Error()))
		}
	}
	p.steps = nil
}

// Discard drops all registered steps. Called when the composite flow
// succeeds and the compensations are no longer needed.
func (p *Plan) Discard() {
	p.steps = nil
}
