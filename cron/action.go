package cron

import "context"

// Action is a recurring producer unit: a name, a schedule, and the work to
// do at every activation.
type Action interface {
	// Name identifies the action in logs and hooks.
	Name() string

	// Schedule returns when the action fires.
	Schedule() Schedule

	// Execute runs one activation. Returning false stops the action for
	// good. An error is logged and the action keeps its schedule.
	Execute(ctx context.Context) (bool, error)
}

// ActionFunc is the work of a FuncAction.
type ActionFunc func(ctx context.Context) (bool, error)

type funcAction struct {
	name     string
	schedule Schedule
	fn       ActionFunc
}

// NewAction builds an Action from a function.
func NewAction(name string, schedule Schedule, fn ActionFunc) Action {
	return &funcAction{name: name, schedule: schedule, fn: fn}
}

func (a *funcAction) Name() string       { return a.name }
func (a *funcAction) Schedule() Schedule { return a.schedule }

func (a *funcAction) Execute(ctx context.Context) (bool, error) { return a.fn(ctx) }
