package request

import (
	"context"
	"log/slog"
)

// Request is the executable form of a work item.
type Request interface {
	// Execute performs the work. It never returns an error: every failure is
	// classified into an Outcome. Upstream rate limiting maps to
	// WaitAndRetry, an empty or unexpected payload to Retry, and anything
	// else unexpected to Fatal.
	Execute(ctx context.Context, logger *slog.Logger) Outcome

	// String describes the request for logs.
	String() string
}

// Factory builds the Request for a work item.
type Factory interface {
	Create(info Info) (Request, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(info Info) (Request, error)

// Create calls f.
func (f FactoryFunc) Create(info Info) (Request, error) { return f(info) }

// NopRequest is the Request for a Nop item. It only logs a warning.
type NopRequest struct{}

// Execute logs that nothing was done and reports Ok.
func (NopRequest) Execute(_ context.Context, logger *slog.Logger) Outcome {
	logger.Warn("nop request executed, nothing to do")
	return Ok
}

func (NopRequest) String() string { return "nop" }
