package executor

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wassimk/elgato-light/internal/infrastructure/logging"
	"github.com/wassimk/elgato-light/internal/target"
)

// Observer is notified once per Apply call with the finished report.
// Observers must not block for long; they run on the caller's goroutine.
type Observer interface {
	Observe(ctx context.Context, r Report)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, r Report)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, r Report) { f(ctx, r) }

// Executor fans an Operation out across targets.
type Executor struct {
	client    DeviceClient
	parallel  bool
	observers []Observer
	clock     clock.Clock
	logger    *logging.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithParallel selects concurrent (true, the default) or sequential fan-out.
func WithParallel(parallel bool) Option {
	return func(e *Executor) { e.parallel = parallel }
}

// WithObserver registers an observer. Observers run in registration order.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithClock replaces the clock used to time reports.
func WithClock(c clock.Clock) Option {
	return func(e *Executor) { e.clock = c }
}

// New returns an Executor that talks to lights through client.
func New(client DeviceClient, logger *logging.Logger, opts ...Option) *Executor {
	e := &Executor{
		client:   client,
		parallel: true,
		clock:    clock.New(),
		logger:   logger.With("component", "executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply runs op against every target and returns the outcomes.
//
// Parameters:
//   - ctx: cancels in-flight device requests
//   - targets: resolved lights; order is kept in the report
//   - op: the operation to apply
//
// Returns:
//   - Report: one Outcome per target. An invalid op fails every target
//     with the validation error without contacting any light.
func (e *Executor) Apply(ctx context.Context, targets []target.Target, op Operation) Report {
	report := Report{
		ID:        uuid.NewString(),
		Operation: op,
		Outcomes:  make([]Outcome, len(targets)),
		StartedAt: e.clock.Now(),
	}

	if err := op.Validate(); err != nil {
		for i, t := range targets {
			report.Outcomes[i] = Outcome{Target: t, Err: err}
		}
	} else if e.parallel && len(targets) > 1 {
		e.applyParallel(ctx, targets, op, report.Outcomes)
	} else {
		for i, t := range targets {
			report.Outcomes[i] = e.applyOne(ctx, t, op)
		}
	}

	report.Duration = e.clock.Since(report.StartedAt)
	e.logger.Debug("operation applied",
		"invocation", report.ID,
		"operation", op.Name(),
		"targets", len(targets),
		"failed", len(report.Failed()),
		"duration", report.Duration,
	)

	for _, o := range e.observers {
		o.Observe(ctx, report)
	}
	return report
}

// applyParallel runs one goroutine per target. Goroutines never return an
// error, so no target cancels another.
func (e *Executor) applyParallel(ctx context.Context, targets []target.Target, op Operation, out []Outcome) {
	var g errgroup.Group
	g.SetLimit(len(targets))
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			out[i] = e.applyOne(ctx, t, op)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Executor) applyOne(ctx context.Context, t target.Target, op Operation) Outcome {
	state, err := op.apply(ctx, e.client, t)
	if err != nil {
		e.logger.Debug("operation failed", "operation", op.Name(), "light", t.Name, "address", t.HostPort(), "error", err)
		return Outcome{Target: t, Err: err}
	}
	return Outcome{Target: t, State: state}
}
